package domain

import (
	"strings"
	"time"
)

// Account representa um usuário do banco com seu saldo.
// Clean Architecture: Esta entidade não sabe o que é JSON nem SQL.
type Account struct {
	ID        int64
	Name      string
	Balance   int64 // Centavos. Pode ficar negativo se a política de overdraft permitir.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WouldOverdraw indica se debitar amount deixaria o saldo negativo
func (a *Account) WouldOverdraw(amount int64) bool {
	return a.Balance-amount < 0
}

// NormalizeName remove espaços das pontas
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
