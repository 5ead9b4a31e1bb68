package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger operation metrics
	Operations        *prometheus.CounterVec
	OperationFailures *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationAmount   *prometheus.HistogramVec

	// Notification metrics
	Notifications *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_operations_total",
				Help: "Total committed ledger operations by kind",
			},
			[]string{"operation"},
		),
		OperationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_operation_failures_total",
				Help: "Total failed ledger operations by kind and error type",
			},
			[]string{"operation", "error_type"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_operation_duration_seconds",
				Help:    "Duration of ledger operations including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_operation_amount",
				Help:    "Amounts moved by committed ledger operations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),

		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_notifications_total",
				Help: "Notifications by template and outcome",
			},
			[]string{"template", "outcome"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

// RecordOperation implements usecase.OperationRecorder.
func (m *Metrics) RecordOperation(operation string, amount decimal.Decimal, duration time.Duration, err error) {
	if duration > 0 {
		m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}

	if err != nil {
		m.OperationFailures.WithLabelValues(operation, ErrorType(err)).Inc()
		return
	}

	m.Operations.WithLabelValues(operation).Inc()
	m.OperationAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
}

// RecordNotification counts a notification outcome.
func (m *Metrics) RecordNotification(template, outcome string) {
	m.Notifications.WithLabelValues(template, outcome).Inc()
}

var errorTypes = []struct {
	err  error
	name string
}{
	{domain.ErrLockTimeout, "lock_timeout"},
	{domain.ErrInfrastructure, "infrastructure"},
	{domain.ErrInvalidAmount, "invalid_amount"},
	{domain.ErrAmountTooLarge, "invalid_amount"},
	{domain.ErrInsufficientFunds, "insufficient_funds"},
	{domain.ErrInstitutionBankrupt, "bankrupt"},
	{domain.ErrSelfTransfer, "self_transfer"},
	{domain.ErrLoanLimitExceeded, "loan_limit"},
	{domain.ErrLoanAlreadyPaid, "loan_already_paid"},
	{domain.ErrLoanNotPending, "loan_not_pending"},
	{domain.ErrNotALoan, "not_a_loan"},
	{domain.ErrAccountNotFound, "not_found"},
	{domain.ErrEntryNotFound, "not_found"},
}

// ErrorType returns a low-cardinality label for err.
func ErrorType(err error) string {
	for _, et := range errorTypes {
		if errors.Is(err, et.err) {
			return et.name
		}
	}
	if domain.IsBusinessError(err) {
		return "validation"
	}
	return "unknown"
}
