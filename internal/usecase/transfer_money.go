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

const opTransfer = "transfer"

// TransferMoneyInput define os dados necessários para realizar uma transferência.
// Usamos DTOs (Data Transfer Objects) para não acoplar a API HTTP ao UseCase.
type TransferMoneyInput struct {
	SenderName   string
	ReceiverName string
	Amount       int64 // Valor em centavos (ex: 1000 = $10,00)
}

// TransferMoneyOutput define o que devolvemos para quem chamou.
type TransferMoneyOutput struct {
	TransferID   int64
	SenderName   string
	ReceiverName string
	Amount       int64
	CreatedAt    time.Time
}

// TransferPolicy reúne as regras configuráveis do motor.
type TransferPolicy struct {
	// RejectOverdraft recusa transferências que deixariam o emissor negativo.
	// Desligado por padrão: saldo negativo é permitido.
	RejectOverdraft bool
	// UnitTimeout limita quanto tempo a unidade atômica pode rodar depois de desligada do contexto do chamador.
	UnitTimeout time.Duration
}

// TransferMoneyUseCase contém as dependências necessárias.
type TransferMoneyUseCase struct {
	accountRepository  gateway.AccountRepository
	transferRepository gateway.TransferRepository
	transactionManager gateway.TransactionManager // Nosso "Unit of Work"
	eventPublisher     gateway.EventPublisher
	policy             TransferPolicy
}

// NewTransferMoney cria uma nova instância do UseCase.
func NewTransferMoney(
	accountRepo gateway.AccountRepository,
	transferRepo gateway.TransferRepository,
	txManager gateway.TransactionManager,
	publisher gateway.EventPublisher,
	policy TransferPolicy,
) *TransferMoneyUseCase {
	return &TransferMoneyUseCase{
		accountRepository:  accountRepo,
		transferRepository: transferRepo,
		transactionManager: txManager,
		eventPublisher:     publisher,
		policy:             policy,
	}
}

// Execute roda a lógica de negócio.
// Não existe retry aqui: repetir uma transferência lenta-mas-comitada debitaria duas vezes.
func (u *TransferMoneyUseCase) Execute(ctx context.Context, input TransferMoneyInput) (*TransferMoneyOutput, error) {
	// Revalidação defensiva: a camada HTTP já valida, mas o motor não confia nisso.
	if err := domain.ValidateTransfer(input.SenderName, input.ReceiverName, input.Amount); err != nil {
		return nil, err
	}
	senderName := domain.NormalizeName(input.SenderName)
	receiverName := domain.NormalizeName(input.ReceiverName)

	// A unidade atômica não é cancelável pelo chamador: ou comita ou faz rollback inteira.
	// Só o UnitTimeout pode abortá-la (e aí é rollback).
	unitCtx := context.WithoutCancel(ctx)
	if u.policy.UnitTimeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(unitCtx, u.policy.UnitTimeout)
		defer cancel()
	}

	var createdTransfer *domain.Transfer

	err := u.transactionManager.Run(unitCtx, func(contextWithTx context.Context) error {
		transactionObject := contextWithTx.Value(gateway.TransactionKey)
		if transactionObject == nil {
			return domain.NewStorageError(opTransfer, errors.New("transaction not found in context"))
		}

		accountRepoTx := u.accountRepository.WithTx(transactionObject)
		transferRepoTx := u.transferRepository.WithTx(transactionObject)

		// Resolver nomes -> IDs primeiro; daqui pra frente tudo é por ID
		senderID, err := resolve(contextWithTx, accountRepoTx, "sender", senderName)
		if err != nil {
			return err
		}
		receiverID, err := resolve(contextWithTx, accountRepoTx, "receiver", receiverName)
		if err != nil {
			return err
		}
		if senderID == receiverID {
			return domain.NewValidationError(opTransfer, domain.ErrSameAccount)
		}

		// Lock nas duas contas em ordem crescente de ID (evita deadlock A->B x B->A)
		locked, err := accountRepoTx.LockForUpdate(contextWithTx, senderID, receiverID)
		if err != nil {
			return domain.NewStorageError(opTransfer, fmt.Errorf("lock accounts: %w", err))
		}
		if len(locked) != 2 {
			// Alguma conta sumiu entre a resolução e o lock
			return domain.NewResolutionError(opTransfer, domain.ErrAccountNotResolved)
		}

		// O nome foi resolvido sem lock: se a conta foi renomeada nesse meio tempo, recusa
		sender := findAccount(locked, senderID)
		receiver := findAccount(locked, receiverID)
		if sender == nil || receiver == nil || sender.Name != senderName || receiver.Name != receiverName {
			return domain.NewResolutionError(opTransfer, fmt.Errorf("account renamed before lock: %w", domain.ErrAccountNotResolved))
		}

		if u.policy.RejectOverdraft {
			if sender.WouldOverdraw(input.Amount) {
				return domain.NewValidationError(opTransfer, domain.ErrInsufficientFunds)
			}
		}

		transfer := &domain.Transfer{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Amount:     input.Amount,
		}
		if err := transferRepoTx.Create(contextWithTx, transfer); err != nil {
			return domain.NewStorageError(opTransfer, fmt.Errorf("insert transfer: %w", err))
		}

		// Débito e crédito como deltas relativos aplicados pelo banco
		debited, err := accountRepoTx.AdjustBalance(contextWithTx, senderID, -input.Amount)
		if err != nil {
			return domain.NewStorageError(opTransfer, fmt.Errorf("debit sender %d: %w", senderID, err))
		}
		credited, err := accountRepoTx.AdjustBalance(contextWithTx, receiverID, input.Amount)
		if err != nil {
			return domain.NewStorageError(opTransfer, fmt.Errorf("credit receiver %d: %w", receiverID, err))
		}

		transfer.SenderName = debited.Name
		transfer.ReceiverName = credited.Name
		createdTransfer = transfer

		return nil // Commit
	})
	if err != nil {
		err = classify(opTransfer, err)
		logUnitFailure(err, "transfer",
			map[string]interface{}{"sender": senderName, "receiver": receiverName, "amount": input.Amount})
		return nil, err
	}

	u.publish(ctx, createdTransfer)

	return &TransferMoneyOutput{
		TransferID:   createdTransfer.ID,
		SenderName:   createdTransfer.SenderName,
		ReceiverName: createdTransfer.ReceiverName,
		Amount:       createdTransfer.Amount,
		CreatedAt:    createdTransfer.CreatedAt,
	}, nil
}

func (u *TransferMoneyUseCase) publish(ctx context.Context, t *domain.Transfer) {
	if u.eventPublisher == nil {
		return
	}
	event := gateway.LedgerEvent{
		EventID:      uuid.NewString(),
		Type:         gateway.RoutingTransferCreated,
		TransferID:   t.ID,
		SenderID:     t.SenderID,
		ReceiverID:   t.ReceiverID,
		SenderName:   t.SenderName,
		ReceiverName: t.ReceiverName,
		Amount:       t.Amount,
		OccurredAt:   t.CreatedAt,
	}
	// Já comitou; falha no evento só vira log
	if err := u.eventPublisher.Publish(context.WithoutCancel(ctx), gateway.LedgerExchange, gateway.RoutingTransferCreated, event); err != nil {
		log.Error().Err(err).Int64("transfer_id", t.ID).Msg("Falha ao publicar evento de transferência")
	}
}

func resolve(ctx context.Context, repo gateway.AccountRepository, role, name string) (int64, error) {
	id, err := repo.ResolveIDByName(ctx, name)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, domain.ErrAccountNotResolved) || errors.Is(err, domain.ErrAccountNotFound) {
		return 0, domain.NewResolutionError(opTransfer, fmt.Errorf("%s %q: %w", role, name, domain.ErrAccountNotResolved))
	}
	return 0, domain.NewStorageError(opTransfer, fmt.Errorf("resolve %s: %w", role, err))
}

func findAccount(accounts []*domain.Account, id int64) *domain.Account {
	for _, a := range accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}
