package gateway

import (
	"context"
	"time"
)

// CachedResponse é o que guardamos para responder de novo a mesma Idempotency-Key
type CachedResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string][]string
}

// IdempotencyRepository protege o POST /transfers de retries do cliente.
// O motor não é idempotente (repetir uma transferência debita duas vezes),
// então a deduplicação fica aqui, na borda.
type IdempotencyRepository interface {
	// Get retorna a resposta cacheada, ou (nil, nil) em cache miss.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Reserve marca a chave como "em processamento". false = outra request já está com ela.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release libera a reserva sem gravar resposta (ex: erro 5xx, permitindo retry)
	Release(ctx context.Context, key string) error

	// Save armazena a resposta com um TTL (Time To Live)
	Save(ctx context.Context, key string, response CachedResponse, ttl time.Duration) error
}
