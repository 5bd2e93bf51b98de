package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/postgres/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE 23503: foreign_key_violation
const pgForeignKeyViolation = "23503"

// AccountRepository implementa gateway.AccountRepository usando pgx/v5
type AccountRepository struct {
	db      *pgxpool.Pool
	queries *db.Queries
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db:      pool,
		queries: db.New(pool),
	}
}

func (r *AccountRepository) Create(ctx context.Context, name string, balance int64) (*domain.Account, error) {
	row, err := r.queries.CreateAccount(ctx, db.CreateAccountParams{Name: name, Balance: balance})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return toDomainAccount(row), nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		// pgx retorna pgx.ErrNoRows, diferente de sql.ErrNoRows
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return toDomainAccount(row), nil
}

func (r *AccountRepository) ResolveIDByName(ctx context.Context, name string) (int64, error) {
	ids, err := r.queries.ListAccountIDsByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve account name: %w", err)
	}
	if len(ids) != 1 {
		return 0, domain.ErrAccountNotResolved
	}
	return ids[0], nil
}

// 🔐 Lock das contas envolvidas, sempre em ordem crescente de ID
func (r *AccountRepository) LockForUpdate(ctx context.Context, ids ...int64) ([]*domain.Account, error) {
	rows, err := r.queries.LockAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, toDomainAccount(row))
	}
	return accounts, nil
}

func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := r.queries.GetAccountForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return toDomainAccount(row), nil
}

// 💸 Delta relativo aplicado pelo banco: nunca lê-modifica-escreve em Go
func (r *AccountRepository) AdjustBalance(ctx context.Context, id int64, delta int64) (*domain.Account, error) {
	row, err := r.queries.AdjustBalance(ctx, db.AdjustBalanceParams{Delta: delta, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return toDomainAccount(row), nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := r.queries.DeleteAccount(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountHasTransfers, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}
	return toDomainAccount(row), nil
}

// WithTx retorna uma cópia do repositório usando uma transação específica
func (r *AccountRepository) WithTx(tx gateway.TransactionObject) gateway.AccountRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &AccountRepository{
		db:      r.db,
		queries: r.queries.WithTx(pgTx),
	}
}

// Mapper: pgtype -> Go types
func toDomainAccount(a db.Account) *domain.Account {
	return &domain.Account{
		ID:      a.ID,
		Name:    a.Name,
		Balance: a.Balance,
		// pgtype.Timestamptz é uma struct, acessamos o valor .Time
		CreatedAt: a.CreatedAt.Time,
		UpdatedAt: a.UpdatedAt.Time,
	}
}
