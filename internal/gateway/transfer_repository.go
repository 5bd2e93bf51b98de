package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
)

// TransferRepository é o "Transfer Ledger": só insere e conta, nunca altera.
type TransferRepository interface {
	// Create preenche ID e CreatedAt gerados pelo banco no próprio objeto
	Create(ctx context.Context, transfer *domain.Transfer) error
	CountByAccount(ctx context.Context, accountID int64) (int64, error)

	// List e ListByAccount devolvem as mais recentes primeiro, com SenderName/ReceiverName preenchidos
	List(ctx context.Context, limit int) ([]*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transfer, error)
	WithTx(tx TransactionObject) TransferRepository
}
