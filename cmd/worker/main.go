package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/mongodb"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Sai com erro para o Docker reiniciar o worker
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("🔴 Worker parou")
	}
	log.Info().Msg("Shutting down worker...")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuração inválida: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("erro ao criar client MongoDB: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("erro ao pingar MongoDB: %w", err)
	}
	log.Info().Msg("✅ Conectado ao MongoDB!")
	auditRepo := mongodb.NewAuditRepository(mongoClient, cfg.MongoDB)

	conn, err := amqp.DialConfig(cfg.RabbitURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "BancoSolarAudit_Consumer",
		},
	})
	if err != nil {
		return fmt.Errorf("erro ao conectar no RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("erro ao abrir canal: %w", err)
	}
	defer ch.Close()

	// Prefetch 1: o RabbitMQ manda uma mensagem por vez e espera o Ack
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("erro ao configurar QoS: %w", err)
	}

	q, err := rabbitmq.DeclareAuditQueue(ch, gateway.LedgerExchange)
	if err != nil {
		return fmt.Errorf("erro ao declarar fila de auditoria: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,         // queue
		"audit_worker", // consumer tag
		false,          // auto-ack: Ack/Nack manual depois de gravar no Mongo
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("erro ao registrar consumidor: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Monitoramento de queda de conexão
	notifyClose := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err := <-notifyClose; err != nil {
			log.Error().Err(err).Msg("🔴 Canal RabbitMQ fechado")
			stop()
		}
	}()

	log.Info().Str("queue", q.Name).Msg(" [*] Worker iniciado. Aguardando mensagens...")

	return rabbitmq.NewAuditConsumer(auditRepo).Run(ctx, msgs)
}
