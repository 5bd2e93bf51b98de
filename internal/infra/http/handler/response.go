package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/rs/zerolog/log"
)

// Helpers para resposta JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Falha ao codificar resposta JSON")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLedgerError mapeia a categoria do erro para o status HTTP
func respondLedgerError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		respondError(w, http.StatusBadRequest, cause(err))
	case domain.KindResolution, domain.KindNotFound:
		respondError(w, http.StatusNotFound, cause(err))
	case domain.KindConflict:
		respondError(w, http.StatusConflict, cause(err))
	default:
		// Erro interno (banco caiu, rollback falhou, bug...)
		log.Error().Err(err).Str("kind", domain.KindOf(err).String()).Msg("Erro interno")
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// cause devolve a mensagem sem o prefixo "op: kind:" do LedgerError
func cause(err error) string {
	var le *domain.LedgerError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err.Error()
	}
	return err.Error()
}
