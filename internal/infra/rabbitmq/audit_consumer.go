package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/mongodb"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	AuditQueue   = "audit_queue"
	auditTimeout = 5 * time.Second
)

// AuditBindings são as routing keys que chegam na fila de auditoria
var AuditBindings = []string{"transfer.#", "account.#"}

type AuditStore interface {
	Save(ctx context.Context, log mongodb.AuditLog) error
}

// Acknowledger é o subconjunto de amqp.Delivery que o consumer precisa
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type AuditConsumer struct {
	store AuditStore
}

func NewAuditConsumer(store AuditStore) *AuditConsumer {
	return &AuditConsumer{store: store}
}

// Handle grava um evento e decide o ack:
// JSON inválido vai pro lixo (Nack sem requeue), falha no Mongo volta pra fila.
func (c *AuditConsumer) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	log.Debug().Bytes("body", body).Msg(" [⬇️] Recebido")

	var event gateway.LedgerEvent
	if err := json.Unmarshal(body, &event); err != nil || event.EventID == "" {
		log.Error().Err(err).Msg("Evento inválido, descartando")
		if err := ack.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("Erro ao enviar Nack (evento inválido)")
		}
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	if err := c.store.Save(saveCtx, mongodb.FromEvent(event)); err != nil {
		log.Error().Err(err).Str("event_id", event.EventID).Msg("Erro ao salvar no Mongo")
		if err := ack.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("Erro ao enviar Nack (Mongo erro)")
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		log.Error().Err(err).Msg("Erro ao enviar Ack")
		return
	}
	log.Info().Str("event_id", event.EventID).Str("type", event.Type).Msg(" [✅] Salvo no MongoDB e Ack enviado")
}

// Run consome até o ctx acabar ou o canal de entregas fechar
func (c *AuditConsumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.Handle(ctx, d.Body, &d)
		}
	}
}

// DeclareAuditQueue declara exchange, fila e bindings usados pelo worker
func DeclareAuditQueue(ch *amqp.Channel, exchange string) (amqp.Queue, error) {
	if err := DeclareLedgerTopology(ch, exchange); err != nil {
		return amqp.Queue{}, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		AuditQueue, // name
		true,       // durable (sobrevive a restart do server)
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range AuditBindings {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return amqp.Queue{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return q, nil
}
