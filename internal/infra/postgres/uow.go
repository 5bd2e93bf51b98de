package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const opUow = "uow"

// Uow implementa gateway.TransactionManager
type Uow struct {
	pool     *pgxpool.Pool
	isoLevel pgx.TxIsoLevel
}

// NewUow cria o Unit of Work. Sem nível informado usa READ COMMITTED:
// os locks de linha e os deltas relativos já garantem a consistência,
// e níveis mais altos geram erros de serialização que o motor não repete.
func NewUow(pool *pgxpool.Pool, isoLevel pgx.TxIsoLevel) *Uow {
	if isoLevel == "" {
		isoLevel = pgx.ReadCommitted
	}
	return &Uow{pool: pool, isoLevel: isoLevel}
}

// Run executa uma função dentro de uma transação ACID.
// Se a função retornar erro, faz Rollback. Se sucesso, Commit.
func (u *Uow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: u.isoLevel})
	if err != nil {
		return domain.NewStorageError(opUow, fmt.Errorf("failed to begin transaction: %w", err))
	}

	// Pânico dentro de fn: desfaz e repassa
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	// Injeta a transação
	ctxWithTx := context.WithValue(ctx, gateway.TransactionKey, tx)

	if err := fn(ctxWithTx); err != nil {
		// Rollback não pode depender de um ctx que talvez já tenha expirado
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).AnErr("cause", err).Msg("🔴 Rollback falhou")
			return domain.NewFatalError(opUow, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError(opUow, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err))
	}
	return nil
}

// ParseIsolation traduz o valor de configuração para o nível do pgx
func ParseIsolation(s string) (pgx.TxIsoLevel, error) {
	switch s {
	case "", "read_committed":
		return pgx.ReadCommitted, nil
	case "repeatable_read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("unknown isolation level %q", s)
	}
}
