package postgres

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/postgres/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransferRepository struct {
	db      *pgxpool.Pool
	queries *db.Queries
}

func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{
		db:      pool,
		queries: db.New(pool),
	}
}

func (r *TransferRepository) Create(ctx context.Context, t *domain.Transfer) error {
	row, err := r.queries.CreateTransfer(ctx, db.CreateTransferParams{
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Amount:     t.Amount,
	})
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	// Atualiza o ID e CreatedAt gerados pelo banco de volta no objeto de domínio
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt.Time
	return nil
}

func (r *TransferRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	count, err := r.queries.CountTransfersByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

// List devolve as transferências mais recentes primeiro, com os nomes das contas
func (r *TransferRepository) List(ctx context.Context, limit int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return toDomainTransfers(rows), nil
}

// ListByAccount devolve o histórico da conta (como emissor ou receptor)
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfersByAccount(ctx, db.ListTransfersByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list account transfers: %w", err)
	}
	return toDomainTransfers(rows), nil
}

func (r *TransferRepository) WithTx(tx gateway.TransactionObject) gateway.TransferRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &TransferRepository{
		db:      r.db,
		queries: r.queries.WithTx(pgTx),
	}
}

func toDomainTransfers(rows []db.ListTransfersRow) []*domain.Transfer {
	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, &domain.Transfer{
			ID:           row.ID,
			SenderID:     row.SenderID,
			ReceiverID:   row.ReceiverID,
			SenderName:   row.SenderName,
			ReceiverName: row.ReceiverName,
			Amount:       row.Amount,
			CreatedAt:    row.CreatedAt.Time,
		})
	}
	return transfers
}
