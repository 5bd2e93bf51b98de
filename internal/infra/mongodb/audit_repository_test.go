package mongodb

import (
	"testing"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestFromEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	log := FromEvent(gateway.LedgerEvent{
		EventID:      "2b1f",
		Type:         gateway.RoutingTransferCreated,
		TransferID:   4,
		SenderID:     1,
		ReceiverID:   2,
		SenderName:   "Alice",
		ReceiverName: "Bob",
		Amount:       3000,
		OccurredAt:   at,
	})

	assert.Equal(t, "2b1f", log.ID)
	assert.Equal(t, int64(4), log.TransferID)
	assert.Equal(t, "Alice", log.SenderName)
	assert.Equal(t, at, log.OccurredAt)
	assert.True(t, log.ProcessedAt.IsZero())
}

func TestAuditLog_BSONOmitsUnusedFields(t *testing.T) {
	raw, err := bson.Marshal(FromEvent(gateway.LedgerEvent{
		EventID:   "e-9",
		Type:      gateway.RoutingAccountDeleted,
		AccountID: 7,
	}))
	assert.NoError(t, err)

	var doc bson.M
	assert.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "e-9", doc["_id"])
	assert.Equal(t, int64(7), doc["account_id"])
	assert.NotContains(t, doc, "transfer_id")
	assert.NotContains(t, doc, "sender_name")
}
