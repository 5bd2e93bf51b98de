package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const opDeleteAccount = "delete_account"

type DeleteAccountOutput struct {
	ID      int64
	Name    string
	Balance int64
}

// DeleteAccountUseCase apaga uma conta consultando o DeletionGuard dentro da mesma transação
// que faz o DELETE, então nenhuma transferência entra entre a checagem e a remoção.
type DeleteAccountUseCase struct {
	accountRepository  gateway.AccountRepository
	guard              *DeletionGuard
	transactionManager gateway.TransactionManager
	eventPublisher     gateway.EventPublisher
}

func NewDeleteAccount(
	accountRepo gateway.AccountRepository,
	guard *DeletionGuard,
	txManager gateway.TransactionManager,
	publisher gateway.EventPublisher,
) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		accountRepository:  accountRepo,
		guard:              guard,
		transactionManager: txManager,
		eventPublisher:     publisher,
	}
}

func (u *DeleteAccountUseCase) Execute(ctx context.Context, accountID int64) (*DeleteAccountOutput, error) {
	if accountID < 1 {
		return nil, domain.NewValidationError(opDeleteAccount, domain.ErrInvalidAccountID)
	}

	var deleted *domain.Account

	err := u.transactionManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject := contextWithTx.Value(gateway.TransactionKey)
		if transactionObject == nil {
			return domain.NewStorageError(opDeleteAccount, errors.New("transaction not found in context"))
		}
		accountRepoTx := u.accountRepository.WithTx(transactionObject)

		// Trava a linha: uma transferência concorrente vai esperar o nosso commit/rollback
		if _, err := accountRepoTx.GetByIDForUpdate(contextWithTx, accountID); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.NewNotFoundError(opDeleteAccount, err)
			}
			return domain.NewStorageError(opDeleteAccount, fmt.Errorf("lock account: %w", err))
		}

		ok, err := u.guard.WithTx(transactionObject).CanDelete(contextWithTx, accountID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewConflictError(opDeleteAccount, domain.ErrAccountHasTransfers)
		}

		account, err := accountRepoTx.Delete(contextWithTx, accountID)
		if err != nil {
			switch {
			// FK RESTRICT do schema: última linha de defesa
			case errors.Is(err, domain.ErrAccountHasTransfers):
				return domain.NewConflictError(opDeleteAccount, err)
			case errors.Is(err, domain.ErrAccountNotFound):
				return domain.NewNotFoundError(opDeleteAccount, err)
			}
			return domain.NewStorageError(opDeleteAccount, err)
		}
		deleted = account
		return nil
	})
	if err != nil {
		err = classify(opDeleteAccount, err)
		logUnitFailure(err, "delete_account", map[string]interface{}{"account_id": accountID})
		return nil, err
	}

	if u.eventPublisher != nil {
		event := gateway.LedgerEvent{
			EventID:    uuid.NewString(),
			Type:       gateway.RoutingAccountDeleted,
			AccountID:  deleted.ID,
			OccurredAt: time.Now().UTC(),
		}
		if err := u.eventPublisher.Publish(context.WithoutCancel(ctx), gateway.LedgerExchange, gateway.RoutingAccountDeleted, event); err != nil {
			log.Error().Err(err).Int64("account_id", deleted.ID).Msg("Falha ao publicar evento de remoção de conta")
		}
	}

	return &DeleteAccountOutput{
		ID:      deleted.ID,
		Name:    deleted.Name,
		Balance: deleted.Balance,
	}, nil
}
