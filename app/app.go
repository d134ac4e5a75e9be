package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"secure-bank-api/config"
	"secure-bank-api/db"
	"secure-bank-api/handler"
	"secure-bank-api/logger"
	"secure-bank-api/notify"
	"secure-bank-api/repository"
	"secure-bank-api/router"
	"secure-bank-api/service"
	"syscall"

	"github.com/redis/go-redis/v9"
)

// TestApp exposes the wired router for integration tests.
type TestApp struct {
	DB     *sql.DB
	Router http.Handler
}

type services struct {
	ledger      *service.LedgerService
	withdrawals *service.WithdrawalService
	registry    *service.AccountRegistry
	catalog     *service.StageCatalog
	auth        *service.AuthService
	outboxRepo  *repository.OutboxRepository
}

func buildServices(database *sql.DB, redisClient *redis.Client) (*services, error) {
	catalog, err := service.NewStageCatalog(config.AppConfig.Withdrawal.StageCount)
	if err != nil {
		return nil, err
	}

	accountRepo := repository.NewAccountRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)
	withdrawalRepo := repository.NewWithdrawalRepository(database)
	outboxRepo := repository.NewOutboxRepository(database)

	notifier := service.NewNotifier(outboxRepo, config.AppConfig.Kafka.Topic)

	// A nil *redis.Client must not become a non-nil interface.
	var cache service.ICacheClient
	if redisClient != nil {
		cache = redisClient
	}
	registry := service.NewAccountRegistry(accountRepo, cache, config.AppConfig.Redis.TTL)

	ledger := service.NewLedgerService(database, accountRepo, transactionRepo, notifier)
	withdrawals := service.NewWithdrawalService(database, accountRepo, withdrawalRepo, ledger, registry, catalog, notifier)

	return &services{
		ledger:      ledger,
		withdrawals: withdrawals,
		registry:    registry,
		catalog:     catalog,
		auth:        service.NewAuthService(config.AppConfig.JWT.SecretKey),
		outboxRepo:  outboxRepo,
	}, nil
}

func buildRouter(database *sql.DB, s *services) http.Handler {
	return router.NewRouter(router.Handlers{
		Health:       handler.NewHealthHandler(database),
		Accounts:     handler.NewAccountHandler(s.registry),
		Transactions: handler.NewTransactionHandler(s.ledger, s.registry),
		Withdrawals:  handler.NewWithdrawalHandler(s.withdrawals),
		Stages:       handler.NewStageHandler(s.catalog),
	}, s.auth)
}

// NewTestApp wires every layer against the given connections. redisClient may be nil.
func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	s, err := buildServices(database, redisClient)
	if err != nil {
		logger.Log.Fatalf("Error wiring services: %v", err)
	}
	return &TestApp{DB: database, Router: buildRouter(database, s)}
}

func newProducer() notify.Producer {
	brokers := config.AppConfig.Kafka.Brokers
	if len(brokers) == 0 {
		logger.Log.Warn("No Kafka brokers configured, outbox messages will only be logged")
		return notify.LogProducer{}
	}
	return notify.NewKafkaProducer(brokers)
}

func Run() {
	logger.Init()
	config.LoadConfig(".")
	logger.Configure(config.AppConfig.Log.Level, config.AppConfig.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(config.AppConfig.Migrations.Path, config.AppConfig.MigrationURL()); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if config.AppConfig.Redis.Enabled {
		redisClient, err = db.ConnectRedis(ctx)
		if err != nil {
			logger.Log.Fatalf("Error connecting to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	s, err := buildServices(database, redisClient)
	if err != nil {
		logger.Log.Fatalf("Error wiring services: %v", err)
	}

	producer := newProducer()
	defer producer.Close()
	processor := notify.NewProcessor(database, s.outboxRepo, producer,
		config.AppConfig.Outbox.PollInterval, config.AppConfig.Outbox.PublishTimeout,
		config.AppConfig.Outbox.BatchSize, config.AppConfig.Outbox.MaxAttempts)
	processorDone := make(chan struct{})
	go func() {
		defer close(processorDone)
		processor.Run(ctx)
	}()

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: buildRouter(database, s),
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.AppConfig.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}
	<-processorDone

	logger.Log.Info("Server exited properly")
}
