package usecase

import (
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/rs/zerolog/log"
)

// classify garante que todo erro que sai de um usecase é um *domain.LedgerError.
// Qualquer coisa não classificada veio da persistência.
func classify(op string, err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return domain.NewStorageError(op, err)
}

// logUnitFailure registra a falha de uma unidade atômica. Rollback que falhou tem log próprio:
// é o único caso em que a atomicidade pode ter sido violada.
func logUnitFailure(err error, operation string, fields map[string]interface{}) {
	switch domain.KindOf(err) {
	case domain.KindFatal:
		log.Error().Err(err).Str("operation", operation).Fields(fields).
			Msg("🔴 ROLLBACK FALHOU: atomicidade da operação não garantida")
	case domain.KindStorage:
		log.Error().Err(err).Str("operation", operation).Fields(fields).Msg("Falha de persistência, operação desfeita")
	default:
		log.Debug().Err(err).Str("operation", operation).Fields(fields).Msg("Operação recusada")
	}
}
