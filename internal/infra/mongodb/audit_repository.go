package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AuditLog representa o documento que será salvo no Mongo.
// Usamos tags 'bson' em vez de 'json'.
type AuditLog struct {
	ID           string    `bson:"_id"` // event_id do evento: redelivery do Rabbit não duplica
	Type         string    `bson:"type"`
	TransferID   int64     `bson:"transfer_id,omitempty"`
	AccountID    int64     `bson:"account_id,omitempty"`
	SenderID     int64     `bson:"sender_id,omitempty"`
	ReceiverID   int64     `bson:"receiver_id,omitempty"`
	SenderName   string    `bson:"sender_name,omitempty"`
	ReceiverName string    `bson:"receiver_name,omitempty"`
	Amount       int64     `bson:"amount,omitempty"`
	OccurredAt   time.Time `bson:"occurred_at"`
	ProcessedAt  time.Time `bson:"processed_at"`
}

// FromEvent converte o evento publicado pela API no documento de auditoria
func FromEvent(e gateway.LedgerEvent) AuditLog {
	return AuditLog{
		ID:           e.EventID,
		Type:         e.Type,
		TransferID:   e.TransferID,
		AccountID:    e.AccountID,
		SenderID:     e.SenderID,
		ReceiverID:   e.ReceiverID,
		SenderName:   e.SenderName,
		ReceiverName: e.ReceiverName,
		Amount:       e.Amount,
		OccurredAt:   e.OccurredAt,
	}
}

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	// Cria/Obtém a collection "audit_logs"
	collection := client.Database(dbName).Collection("audit_logs")
	return &AuditRepository{collection: collection}
}

func (r *AuditRepository) Save(ctx context.Context, log AuditLog) error {
	// Adiciona timestamp de processamento
	log.ProcessedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		// Mesmo event_id já gravado: a mensagem foi reentregue, nada a fazer
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
