package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter monta as rotas. idempotency pode ser nil (Redis fora do ar).
func NewRouter(transfers *TransferHandler, accounts *AccountHandler, idempotency func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()

	// Middlewares básicos
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer) // Evita crash se der panic
	router.Use(middleware.Timeout(60 * time.Second))

	// Rota de Health Check (para o Docker saber se estamos vivos)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Falha ao escrever resposta de health check")
		}
	})

	router.Group(func(r chi.Router) {
		if idempotency != nil {
			r.Use(idempotency)
		}
		r.Post("/transfers", transfers.Create)
	})
	router.Get("/transfers", transfers.List)

	router.Route("/accounts/{id}", func(r chi.Router) {
		r.Delete("/", accounts.Delete)
		r.Get("/deletable", accounts.Deletable)
		r.Get("/transfers", transfers.ListByAccount)
	})

	return router
}
