package gateway

import (
	"context"
	"time"
)

// Exchange e routing keys dos eventos do ledger
const (
	LedgerExchange         = "ledger_events"
	RoutingTransferCreated = "transfer.created"
	RoutingAccountDeleted  = "account.deleted"
)

// LedgerEvent é o JSON que vai para o RabbitMQ e que o worker de auditoria consome
type LedgerEvent struct {
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	TransferID   int64     `json:"transfer_id,omitempty"`
	AccountID    int64     `json:"account_id,omitempty"`
	SenderID     int64     `json:"sender_id,omitempty"`
	ReceiverID   int64     `json:"receiver_id,omitempty"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	Amount       int64     `json:"amount,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}
