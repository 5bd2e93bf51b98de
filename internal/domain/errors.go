package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("transfer amount must be greater than zero")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNotResolved  = errors.New("account name did not resolve to exactly one account")
	ErrEmptySender         = errors.New("sender name is required")
	ErrEmptyReceiver       = errors.New("receiver name is required")
	ErrSameAccount         = errors.New("sender and receiver must be different accounts")
	ErrAccountHasTransfers = errors.New("account has transfer history")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrInvalidAccountID    = errors.New("account id must be a positive integer")
)

// Kind agrupa os erros nas categorias que o chamador precisa distinguir.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindResolution
	KindNotFound
	KindConflict
	KindStorage
	KindFatal
)

// Sentinelas por categoria: errors.Is(err, domain.ErrResolution) funciona
// para qualquer *LedgerError daquela categoria.
var (
	ErrValidation = errors.New("validation error")
	ErrResolution = errors.New("resolution error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
	ErrFatal      = errors.New("fatal error")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindResolution:
		return "resolution"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindResolution:
		return ErrResolution
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindStorage:
		return ErrStorage
	case KindFatal:
		return ErrFatal
	default:
		return nil
	}
}

// LedgerError é o erro tipado que sai do motor e do guard.
// Op diz onde aconteceu, Err carrega a causa original (pgx, sentinela de domínio...).
type LedgerError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *LedgerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

func (e *LedgerError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf devolve a categoria do erro, ou KindUnknown se não for um LedgerError
func KindOf(err error) Kind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

func NewValidationError(op string, err error) error {
	return &LedgerError{Kind: KindValidation, Op: op, Err: err}
}

func NewResolutionError(op string, err error) error {
	return &LedgerError{Kind: KindResolution, Op: op, Err: err}
}

func NewNotFoundError(op string, err error) error {
	return &LedgerError{Kind: KindNotFound, Op: op, Err: err}
}

func NewConflictError(op string, err error) error {
	return &LedgerError{Kind: KindConflict, Op: op, Err: err}
}

func NewStorageError(op string, err error) error {
	return &LedgerError{Kind: KindStorage, Op: op, Err: err}
}

// NewFatalError marca que o rollback falhou: a garantia de atomicidade pode ter sido quebrada.
func NewFatalError(op string, cause, rollbackErr error) error {
	return &LedgerError{
		Kind: KindFatal,
		Op:   op,
		Err:  fmt.Errorf("rollback failed: %w (cause: %w)", rollbackErr, cause),
	}
}
