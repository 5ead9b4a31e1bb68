package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/bankledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/idgen"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/notify"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

// storage bundles the repositories of one storage driver.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	entries   usecase.EntryRepository
	snapshots usecase.SnapshotReader
	ledger    usecase.LedgerRepository
	retrier   usecase.Retrier
	ping      handler.Pinger
	close     func()
}

// openStorage builds the repositories for cfg.StorageDriver.
func openStorage(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memoryRepo.NewStore(cfg.LockTimeout)
		return &storage{
			txManager: store,
			accounts:  memoryRepo.NewAccountRepository(store),
			entries:   memoryRepo.NewEntryRepository(store),
			snapshots: store,
			ledger:    memoryRepo.NewLedgerRepository(store),
			ping:      store,
			close:     func() {},
		}, nil

	case config.StoragePostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		l.Info().Msg("connected to postgres")

		ledger := postgresRepo.NewLedgerRepository(pool)
		return &storage{
			txManager: postgresRepo.NewTxManager(pool, cfg.LockTimeout),
			accounts:  postgresRepo.NewAccountRepository(pool),
			entries:   postgresRepo.NewEntryRepository(pool),
			snapshots: ledger,
			ledger:    ledger,
			retrier:   postgresRepo.NewRetrier(l),
			ping:      ledger,
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// sharedState holds what lives in Redis when it is configured and in process
// otherwise.
type sharedState struct {
	bankruptcy  usecase.BankruptcyAdmin
	idempotency usecase.IdempotencyStore
	notifier    usecase.Notifier
	ping        handler.Pinger
}

func newSharedState(client *goredis.Client, cfg *config.Config, l zerolog.Logger) *sharedState {
	state := &sharedState{notifier: notify.NewLogNotifier(l)}

	if client == nil {
		state.bankruptcy = memoryRepo.NewBankruptcyFlag()
		state.idempotency = memoryRepo.NewIdempotencyStore()
		return state
	}

	state.bankruptcy = redisRepo.NewBankruptcyFlag(client, cfg.BankruptcyKey)
	state.idempotency = redisRepo.NewIdempotencyStore(client)
	state.ping = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	if cfg.Notifier == config.NotifierRedis {
		state.notifier = redisRepo.NewNotifier(client, cfg.NotifyChannel)
	}
	return state
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		l.Info().Msg("connected to redis")
	} else {
		l.Warn().Msg("REDIS_URL is empty: idempotency keys and bankruptcy flag are process local")
	}
	shared := newSharedState(redisClient, cfg, l)

	m := metrics.New()

	dispatcher := notify.NewDispatcher(notify.Config{
		Notifier:  shared.notifier,
		Logger:    l,
		Recorder:  m,
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
	})
	dispatcherDone := make(chan struct{})
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	go func() {
		defer close(dispatcherDone)
		dispatcher.Start(dispatchCtx)
	}()

	ids := idgen.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(store.txManager, store.accounts, store.entries, ids, idgen.NewAccountNumberGenerator())
	ledgerUC := usecase.NewLedgerUseCase(
		store.txManager,
		store.accounts,
		store.entries,
		ids,
		shared.bankruptcy,
		dispatcher,
		domain.NewLoanPolicy(cfg.LoanLimit),
	).WithRetrier(store.retrier).WithRecorder(m).WithLogger(l)
	reportUC := usecase.NewReportUseCase(store.accounts, store.entries, store.snapshots, store.ledger)

	checks := map[string]handler.Pinger{cfg.StorageDriver: store.ping}
	if shared.ping != nil {
		checks["redis"] = shared.ping
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	go rateLimiter.RunCleanup(ctx, 10*time.Minute, time.Hour)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		AdminHandler:     handler.NewAdminHandler(shared.bankruptcy),
		HealthHandler:    handler.NewHealthHandler(checks),
		Logger:           l,
		IdempotencyStore: shared.idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
	})

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info().Str("addr", server.Addr).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stopDispatch()
			<-dispatcherDone
			return err
		}
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	// Requests are drained, so no new notifications can arrive.
	stopDispatch()
	<-dispatcherDone

	l.Info().Msg("server stopped")
	return nil
}

func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
