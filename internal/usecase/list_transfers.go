package usecase

import (
	"context"
	"errors"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
)

const (
	opListTransfers = "list_transfers"

	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var ErrInvalidLimit = errors.New("limit must be between 1 and 1000")

// ListTransfersInput: AccountID 0 lista o ledger inteiro
type ListTransfersInput struct {
	AccountID int64
	Limit     int
}

// ListTransfersUseCase é só leitura: não abre unidade atômica
type ListTransfersUseCase struct {
	transferRepository gateway.TransferRepository
}

func NewListTransfers(transferRepo gateway.TransferRepository) *ListTransfersUseCase {
	return &ListTransfersUseCase{transferRepository: transferRepo}
}

func (u *ListTransfersUseCase) Execute(ctx context.Context, input ListTransfersInput) ([]*domain.Transfer, error) {
	if input.AccountID < 0 {
		return nil, domain.NewValidationError(opListTransfers, domain.ErrInvalidAccountID)
	}
	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, domain.NewValidationError(opListTransfers, ErrInvalidLimit)
	}

	var (
		transfers []*domain.Transfer
		err       error
	)
	if input.AccountID == 0 {
		transfers, err = u.transferRepository.List(ctx, limit)
	} else {
		transfers, err = u.transferRepository.ListByAccount(ctx, input.AccountID, limit)
	}
	if err != nil {
		return nil, domain.NewStorageError(opListTransfers, err)
	}
	return transfers, nil
}
