package domain

import "time"

// Transfer é o registro imutável de uma movimentação entre duas contas.
// Só o motor de transferências cria; ninguém altera nem apaga.
type Transfer struct {
	ID           int64
	SenderID     int64
	ReceiverID   int64
	SenderName   string
	ReceiverName string
	Amount       int64 // Centavos, sempre > 0
	CreatedAt    time.Time
}

// ValidateTransfer checa as regras que valem antes de qualquer acesso ao banco
func ValidateTransfer(senderName, receiverName string, amount int64) error {
	sender := NormalizeName(senderName)
	receiver := NormalizeName(receiverName)

	switch {
	case sender == "":
		return NewValidationError("transfer", ErrEmptySender)
	case receiver == "":
		return NewValidationError("transfer", ErrEmptyReceiver)
	case sender == receiver:
		return NewValidationError("transfer", ErrSameAccount)
	case amount <= 0:
		return NewValidationError("transfer", ErrInvalidAmount)
	}
	return nil
}
