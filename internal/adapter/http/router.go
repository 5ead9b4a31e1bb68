package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	LedgerHandler  *handler.LedgerHandler
	ReportHandler  *handler.ReportHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler

	Logger zerolog.Logger

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/", cfg.AccountHandler.List)

			r.Route("/{number}", func(r chi.Router) {
				r.Get("/", cfg.AccountHandler.Get)
				r.Post("/deposits", cfg.LedgerHandler.Deposit)
				r.Post("/withdrawals", cfg.LedgerHandler.Withdraw)
				r.Post("/transfers", cfg.LedgerHandler.Transfer)
				r.Post("/loans", cfg.LedgerHandler.RequestLoan)
				r.Get("/loans", cfg.ReportHandler.ListLoans)
				r.Get("/statement", cfg.ReportHandler.Statement)
				r.Get("/balance/history", cfg.ReportHandler.BalanceHistory)
				r.Get("/reconciliation", cfg.ReportHandler.Reconcile)
			})
		})

		r.Post("/loans/{id}/payment", cfg.LedgerHandler.PayLoan)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/loans/{id}/approval", cfg.LedgerHandler.ApproveLoan)
			r.Get("/bankruptcy", cfg.AdminHandler.GetBankruptcy)
			r.Put("/bankruptcy", cfg.AdminHandler.SetBankruptcy)
		})

		r.Get("/ledger/consistency", cfg.ReportHandler.CheckConsistency)
	})

	return r
}
