package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
)

// memStore simula o Postgres: o mutex faz o papel dos locks de linha e
// o snapshot/restore faz o papel do ROLLBACK.
type memStore struct {
	mu             sync.Mutex
	accounts       map[int64]*domain.Account
	transfers      []*domain.Transfer
	nextAccountID  int64
	nextTransferID int64

	failOn      map[string]error
	beforeLock  func(accounts map[int64]*domain.Account)
	rollbackErr error
	commitErr   error
	calls       []string
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*domain.Account),
		failOn:   make(map[string]error),
	}
}

type memSnapshot struct {
	accounts  map[int64]domain.Account
	transfers []*domain.Transfer
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{accounts: make(map[int64]domain.Account, len(s.accounts))}
	for id, a := range s.accounts {
		snap.accounts[id] = *a
	}
	snap.transfers = append(snap.transfers, s.transfers...)
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.accounts = make(map[int64]*domain.Account, len(snap.accounts))
	for id, a := range snap.accounts {
		cp := a
		s.accounts[id] = &cp
	}
	s.transfers = snap.transfers
}

func (s *memStore) fail(op string) error {
	s.calls = append(s.calls, op)
	return s.failOn[op]
}

// seed cria a conta direto, sem passar pelo repositório
func (s *memStore) seed(name string, balance int64) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAccountID++
	a := &domain.Account{ID: s.nextAccountID, Name: name, Balance: balance, CreatedAt: time.Now()}
	s.accounts[a.ID] = a
	return a
}

func (s *memStore) balance(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

func (s *memStore) exists(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[id]
	return ok
}

func (s *memStore) ledger() []domain.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transfer, 0, len(s.transfers))
	for _, t := range s.transfers {
		out = append(out, *t)
	}
	return out
}

func (s *memStore) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *memStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// memUow implementa gateway.TransactionManager
type memUow struct {
	store *memStore
}

func (u *memUow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()
	ctxWithTx := context.WithValue(ctx, gateway.TransactionKey, "mem-tx")

	if err := fn(ctxWithTx); err != nil {
		if u.store.rollbackErr != nil {
			return domain.NewFatalError("uow", err, u.store.rollbackErr)
		}
		u.store.restore(snap)
		return err
	}
	if u.store.commitErr != nil {
		u.store.restore(snap)
		return domain.NewStorageError("uow", fmt.Errorf("%w: %v", domain.ErrTransactionFailed, u.store.commitErr))
	}
	return nil
}

// memAccountRepository implementa gateway.AccountRepository.
// Fora de transação trava o store; dentro, o memUow já está com o lock.
type memAccountRepository struct {
	store *memStore
	inTx  bool
}

func (r *memAccountRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memAccountRepository) Create(_ context.Context, name string, balance int64) (*domain.Account, error) {
	defer r.lock()()
	r.store.nextAccountID++
	a := &domain.Account{ID: r.store.nextAccountID, Name: name, Balance: balance}
	r.store.accounts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (r *memAccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	defer r.lock()()
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepository) ResolveIDByName(_ context.Context, name string) (int64, error) {
	defer r.lock()()
	if err := r.store.fail("resolve"); err != nil {
		return 0, err
	}
	var matches []int64
	for id, a := range r.store.accounts {
		if a.Name == name {
			matches = append(matches, id)
		}
	}
	if len(matches) != 1 {
		return 0, domain.ErrAccountNotResolved
	}
	return matches[0], nil
}

func (r *memAccountRepository) LockForUpdate(_ context.Context, ids ...int64) ([]*domain.Account, error) {
	defer r.lock()()
	if err := r.store.fail("lock"); err != nil {
		return nil, err
	}
	if r.store.beforeLock != nil {
		r.store.beforeLock(r.store.accounts)
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []*domain.Account
	for _, id := range sorted {
		if a, ok := r.store.accounts[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAccountRepository) GetByIDForUpdate(_ context.Context, id int64) (*domain.Account, error) {
	defer r.lock()()
	if err := r.store.fail("get_for_update"); err != nil {
		return nil, err
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepository) AdjustBalance(_ context.Context, id int64, delta int64) (*domain.Account, error) {
	defer r.lock()()
	op := "credit"
	if delta < 0 {
		op = "debit"
	}
	if err := r.store.fail(op); err != nil {
		return nil, err
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance += delta
	cp := *a
	return &cp, nil
}

func (r *memAccountRepository) Delete(_ context.Context, id int64) (*domain.Account, error) {
	defer r.lock()()
	if err := r.store.fail("delete"); err != nil {
		return nil, err
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	delete(r.store.accounts, id)
	return a, nil
}

func (r *memAccountRepository) WithTx(tx gateway.TransactionObject) gateway.AccountRepository {
	if tx == nil {
		return r
	}
	return &memAccountRepository{store: r.store, inTx: true}
}

// memTransferRepository implementa gateway.TransferRepository
type memTransferRepository struct {
	store *memStore
	inTx  bool
}

func (r *memTransferRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memTransferRepository) Create(_ context.Context, t *domain.Transfer) error {
	defer r.lock()()
	if err := r.store.fail("insert"); err != nil {
		return err
	}
	r.store.nextTransferID++
	t.ID = r.store.nextTransferID
	t.CreatedAt = time.Now().UTC()
	cp := *t
	r.store.transfers = append(r.store.transfers, &cp)
	return nil
}

func (r *memTransferRepository) CountByAccount(_ context.Context, accountID int64) (int64, error) {
	defer r.lock()()
	if err := r.store.fail("count"); err != nil {
		return 0, err
	}
	var n int64
	for _, t := range r.store.transfers {
		if t.SenderID == accountID || t.ReceiverID == accountID {
			n++
		}
	}
	return n, nil
}

func (r *memTransferRepository) List(_ context.Context, limit int) ([]*domain.Transfer, error) {
	return r.list(0, limit)
}

func (r *memTransferRepository) ListByAccount(_ context.Context, accountID int64, limit int) ([]*domain.Transfer, error) {
	return r.list(accountID, limit)
}

func (r *memTransferRepository) list(accountID int64, limit int) ([]*domain.Transfer, error) {
	defer r.lock()()
	if err := r.store.fail("list"); err != nil {
		return nil, err
	}
	var out []*domain.Transfer
	for i := len(r.store.transfers) - 1; i >= 0 && len(out) < limit; i-- {
		t := r.store.transfers[i]
		if accountID != 0 && t.SenderID != accountID && t.ReceiverID != accountID {
			continue
		}
		cp := *t
		if a, ok := r.store.accounts[t.SenderID]; ok {
			cp.SenderName = a.Name
		}
		if a, ok := r.store.accounts[t.ReceiverID]; ok {
			cp.ReceiverName = a.Name
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTransferRepository) WithTx(tx gateway.TransactionObject) gateway.TransferRepository {
	if tx == nil {
		return r
	}
	return &memTransferRepository{store: r.store, inTx: true}
}

// recordingPublisher guarda os eventos publicados
type recordingPublisher struct {
	mu     sync.Mutex
	events []gateway.LedgerEvent
	keys   []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	if ev, ok := body.(gateway.LedgerEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

type fixture struct {
	store     *memStore
	accounts  *memAccountRepository
	transfers *memTransferRepository
	uow       *memUow
	publisher *recordingPublisher
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:     store,
		accounts:  &memAccountRepository{store: store},
		transfers: &memTransferRepository{store: store},
		uow:       &memUow{store: store},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) transferUseCase(policy TransferPolicy) *TransferMoneyUseCase {
	return NewTransferMoney(f.accounts, f.transfers, f.uow, f.publisher, policy)
}

func (f *fixture) listUseCase() *ListTransfersUseCase {
	return NewListTransfers(f.transfers)
}

func (f *fixture) deleteUseCase() *DeleteAccountUseCase {
	return NewDeleteAccount(f.accounts, NewDeletionGuard(f.transfers), f.uow, f.publisher)
}
