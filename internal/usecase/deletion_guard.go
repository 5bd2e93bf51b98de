package usecase

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
)

const opCanDelete = "can_delete"

// DeletionGuard impede apagar uma conta que aparece em alguma transferência.
type DeletionGuard struct {
	transferRepository gateway.TransferRepository
}

func NewDeletionGuard(transferRepo gateway.TransferRepository) *DeletionGuard {
	return &DeletionGuard{transferRepository: transferRepo}
}

// CanDelete devolve true só se nenhuma transferência referencia a conta (como emissor ou receptor).
func (g *DeletionGuard) CanDelete(ctx context.Context, accountID int64) (bool, error) {
	if accountID < 1 {
		return false, domain.NewValidationError(opCanDelete, domain.ErrInvalidAccountID)
	}

	count, err := g.transferRepository.CountByAccount(ctx, accountID)
	if err != nil {
		return false, domain.NewStorageError(opCanDelete, err)
	}
	return count == 0, nil
}

// WithTx devolve um guard que consulta dentro da transação informada
func (g *DeletionGuard) WithTx(tx gateway.TransactionObject) *DeletionGuard {
	return &DeletionGuard{transferRepository: g.transferRepository.WithTx(tx)}
}
