package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	redisrepo "github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *redisrepo.IdempotencyRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisrepo.NewIdempotencyRepository(client)
}

type countingHandler struct {
	calls  int
	status int
	body   string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = w.Write([]byte(h.body))
}

func doRequest(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated, body: `{"transfer_id":7}`}
	h := Idempotency(newStore(t), time.Hour)(next)

	first := doRequest(h, "abc")
	second := doRequest(h, "abc")

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"transfer_id":7}`, second.Body.String())
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated, body: `{}`}
	h := Idempotency(newStore(t), time.Hour)(next)

	doRequest(h, "")
	doRequest(h, "")

	assert.Equal(t, 2, next.calls)
}

func TestIdempotency_ServerErrorIsNotCached(t *testing.T) {
	next := &countingHandler{status: http.StatusInternalServerError, body: `{"error":"boom"}`}
	h := Idempotency(newStore(t), time.Hour)(next)

	doRequest(h, "retry-me")
	rec := doRequest(h, "retry-me")

	assert.Equal(t, 2, next.calls)
	assert.Empty(t, rec.Header().Get("X-Idempotency-Hit"))
}

func TestIdempotency_ClientErrorIsCached(t *testing.T) {
	next := &countingHandler{status: http.StatusConflict, body: `{"error":"account has transfer history"}`}
	h := Idempotency(newStore(t), time.Hour)(next)

	doRequest(h, "k")
	rec := doRequest(h, "k")

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotency_InFlightKeyIsConflict(t *testing.T) {
	store := newStore(t)
	ok, err := store.Reserve(context.Background(), "busy", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	next := &countingHandler{status: http.StatusCreated, body: `{}`}
	rec := doRequest(Idempotency(store, time.Hour)(next), "busy")

	assert.Equal(t, 0, next.calls)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// finishesOtherRequestStore simula outra request com a mesma chave
// terminando logo depois do primeiro Get desta.
type finishesOtherRequestStore struct {
	*redisrepo.IdempotencyRepository
	other func()
	gets  int
}

func (s *finishesOtherRequestStore) Get(ctx context.Context, key string) (*gateway.CachedResponse, error) {
	resp, err := s.IdempotencyRepository.Get(ctx, key)
	s.gets++
	if s.gets == 1 && s.other != nil {
		s.other()
	}
	return resp, err
}

func TestIdempotency_RequestFinishedBetweenGetAndReserveIsReplayed(t *testing.T) {
	base := newStore(t)
	next := &countingHandler{status: http.StatusCreated, body: `{"transfer_id":1}`}

	store := &finishesOtherRequestStore{IdempotencyRepository: base}
	store.other = func() {
		// request A roda inteira com o store "de verdade"
		doRequest(Idempotency(base, time.Hour)(next), "race")
	}

	rec := doRequest(Idempotency(store, time.Hour)(next), "race")

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, `{"transfer_id":1}`, rec.Body.String())
}

type failingSaveStore struct {
	*redisrepo.IdempotencyRepository
}

func (s *failingSaveStore) Save(context.Context, string, gateway.CachedResponse, time.Duration) error {
	return errors.New("redis timeout")
}

func TestIdempotency_SaveFailureReleasesKey(t *testing.T) {
	store := &failingSaveStore{IdempotencyRepository: newStore(t)}
	next := &countingHandler{status: http.StatusCreated, body: `{}`}
	h := Idempotency(store, time.Hour)(next)

	doRequest(h, "lost")
	rec := doRequest(h, "lost")

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
