package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/rs/zerolog/log"
)

const idempotencyHeader = "Idempotency-Key"

// responseRecorder é um "espião" que grava o que o handler escreve
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)                  // Grava no nosso buffer
	return r.ResponseWriter.Write(b) // Manda pro cliente
}

// Idempotency deduplica retries do cliente. O motor de transferências não é idempotente,
// então sem isso um retry de rede vira uma segunda transferência.
func Idempotency(store gateway.IdempotencyRepository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				// Se não tem chave, segue
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			// Verificar no Redis
			cached, err := store.Get(ctx, key)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao buscar chave de idempotência")
				// Em caso de erro no Redis, deixamos passar para não travar a API (Fail Open)
				next.ServeHTTP(w, r)
				return
			}

			// Cache Hit: Retornar o que já tínhamos gravado
			if cached != nil {
				log.Info().Str("key", key).Msg("Idempotency cache hit")
				writeCached(w, cached)
				return
			}

			// Outra request com a mesma chave ainda está rodando
			reserved, err := store.Reserve(ctx, key, ttl)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao reservar chave de idempotência")
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				log.Warn().Str("key", key).Msg("Idempotency key em processamento")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"request with this Idempotency-Key is already in progress"}`))
				return
			}

			// A request que segurava a chave pode ter terminado entre o Get e o Reserve
			cached, err = store.Get(ctx, key)
			if err == nil && cached != nil {
				releaseKey(ctx, store, key)
				log.Info().Str("key", key).Msg("Idempotency cache hit após reserva")
				writeCached(w, cached)
				return
			}

			// Cache Miss: Processar a requisição e gravar a resposta
			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // Default
				body:           &bytes.Buffer{},
			}

			next.ServeHTTP(recorder, r)

			// Erros 500 não são cacheados para permitir retry
			if recorder.statusCode >= 500 {
				releaseKey(ctx, store, key)
				return
			}

			err = store.Save(ctx, key, gateway.CachedResponse{
				StatusCode: recorder.statusCode,
				Body:       recorder.body.Bytes(),
				Headers:    map[string][]string{"Content-Type": w.Header().Values("Content-Type")},
			}, ttl)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao salvar chave de idempotência")
				// Sem resposta gravada, a reserva só bloquearia os retries até o TTL
				releaseKey(ctx, store, key)
			}
		})
	}
}

func releaseKey(ctx context.Context, store gateway.IdempotencyRepository, key string) {
	if err := store.Release(ctx, key); err != nil {
		log.Error().Err(err).Msg("Falha ao liberar chave de idempotência")
	}
}

func writeCached(w http.ResponseWriter, cached *gateway.CachedResponse) {
	for k, values := range cached.Headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("X-Idempotency-Hit", "true")
	w.WriteHeader(cached.StatusCode)
	if _, err := w.Write(cached.Body); err != nil {
		log.Error().Err(err).Msg("Falha ao escrever resposta cacheada")
	}
}
