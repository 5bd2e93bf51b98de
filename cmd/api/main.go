package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/http/handler"
	internalMiddleware "github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/http/middleware"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/postgres"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/rabbitmq"
	redisInfra "github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/infra/redis"
	"github.com/Guilherme-G-Cadilhe/Go-LedgerFlow-BancoSolar/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Configuração de Logs (Zerolog - estruturado e rápido)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}) // Log bonito no terminal

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	isoLevel, err := postgres.ParseIsolation(cfg.Isolation)
	if err != nil {
		log.Fatal().Err(err).Msg("LEDGER_ISOLATION inválido")
	}

	ctx := context.Background()

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Falha ao aplicar migrations")
	}

	dbPool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Não foi possível conectar ao banco de dados")
	}
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	var idempotencyMiddleware func(http.Handler) http.Handler
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Não foi possível conectar ao Redis (Idempotência desabilitada)")
	} else {
		log.Info().Msg("✅ Conectado ao Redis!")
		idempotencyRepo := redisInfra.NewIdempotencyRepository(redisClient)
		idempotencyMiddleware = internalMiddleware.Idempotency(idempotencyRepo, cfg.IdempotencyTTL)
	}

	var eventPublisher gateway.EventPublisher
	rabbitConn, err := amqp.DialConfig(cfg.RabbitURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "BancoSolarAPI_Publisher",
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Falha ao conectar no RabbitMQ (Eventos não serão enviados)")
	} else {
		defer rabbitConn.Close()
		log.Info().Msg("✅ Conectado ao RabbitMQ!")

		ch, err := rabbitConn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("Falha ao abrir canal RabbitMQ")
		}
		defer ch.Close()

		if err := rabbitmq.DeclareLedgerTopology(ch, gateway.LedgerExchange); err != nil {
			log.Fatal().Err(err).Msg("Falha ao declarar Exchange")
		}
		eventPublisher = rabbitmq.NewRabbitMQPublisher(ch)
	}

	// Inicialização da Camada de Infraestrutura (Repositories)
	accountRepository := postgres.NewAccountRepository(dbPool)
	transferRepository := postgres.NewTransferRepository(dbPool)
	//  Unit of Work (Gerenciador de Transações)
	uow := postgres.NewUow(dbPool, isoLevel)

	// Inicialização da Camada de UseCase (Regras de Negócio)
	transferUseCase := usecase.NewTransferMoney(accountRepository, transferRepository, uow, eventPublisher, usecase.TransferPolicy{
		RejectOverdraft: cfg.RejectOverdraft,
		UnitTimeout:     cfg.UnitTimeout,
	})
	listTransfersUseCase := usecase.NewListTransfers(transferRepository)
	deletionGuard := usecase.NewDeletionGuard(transferRepository)
	deleteAccountUseCase := usecase.NewDeleteAccount(accountRepository, deletionGuard, uow, eventPublisher)

	router := handler.NewRouter(
		handler.NewTransferHandler(transferUseCase, listTransfersUseCase),
		handler.NewAccountHandler(deleteAccountUseCase, deletionGuard),
		idempotencyMiddleware,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("🚀 Servidor rodando na porta %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Falha ao iniciar servidor HTTP")
		}
	}()

	// Graceful Shutdown: requests em andamento terminam antes do pool fechar
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	log.Info().Msg("Desligando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Falha no shutdown do servidor HTTP")
	}
}
