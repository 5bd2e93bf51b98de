package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
)

// AccountRepository define o contrato do "Account Store".
// O Usecase só interage com isso, sem saber se é Postgres ou memória.
type AccountRepository interface {
	// Create e GetByID só existem para semear e conferir contas (testes de integração, scripts);
	// cadastro e consulta de contas não são expostos por HTTP nem usados pelos usecases.
	Create(ctx context.Context, name string, balance int64) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	// ResolveIDByName traduz nome -> id. Zero ou mais de um resultado viram domain.ErrAccountNotResolved.
	ResolveIDByName(ctx context.Context, name string) (int64, error)

	// Lock Pessimista: trava as linhas sempre na ordem crescente de ID
	LockForUpdate(ctx context.Context, ids ...int64) ([]*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error)

	// AdjustBalance aplica um delta relativo (balance = balance + delta) e devolve a conta atualizada.
	AdjustBalance(ctx context.Context, id int64, delta int64) (*domain.Account, error)

	Delete(ctx context.Context, id int64) (*domain.Account, error)

	// WithTx devolve uma cópia do repositório ligada à transação em andamento.
	WithTx(tx TransactionObject) AccountRepository
}
