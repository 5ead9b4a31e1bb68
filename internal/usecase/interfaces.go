package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx Transaction, number string) (*domain.Account, error)
	// GetByNumbersForUpdate locks the accounts in ascending number order.
	// Missing numbers are skipped, so callers compare lengths.
	GetByNumbersForUpdate(ctx context.Context, tx Transaction, numbers []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, number string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for the transaction log.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	UpdateLoanState(ctx context.Context, tx Transaction, entry *domain.Entry) error
	ListLoansByAccount(ctx context.Context, accountNumber string) ([]*domain.Entry, error)
	ListLoansByAccountTx(ctx context.Context, tx Transaction, accountNumber string) ([]*domain.Entry, error)
	GetBalanceAtTime(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error)
}

// SnapshotReader reads an account together with its history from one consistent view.
type SnapshotReader interface {
	Snapshot(ctx context.Context, accountNumber string) (*domain.Snapshot, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalNet decimal.Decimal, err error)
}

// Transaction is the atomic commit unit: balance updates and log appends made
// through it become visible together on Commit or not at all.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// BankruptcyFlag reports the process-wide bankruptcy state consulted by withdrawals.
type BankruptcyFlag interface {
	IsInstitutionBankrupt(ctx context.Context) (bool, error)
}

// BankruptcyAdmin sets or clears the bankruptcy flag.
type BankruptcyAdmin interface {
	BankruptcyFlag
	SetInstitutionBankrupt(ctx context.Context, bankrupt bool) error
}

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotificationQueue accepts notifications for out-of-band delivery. Enqueue
// must not block the caller.
type NotificationQueue interface {
	Enqueue(n domain.Notification)
}

// OperationRecorder records ledger operation outcomes.
type OperationRecorder interface {
	RecordOperation(operation string, amount decimal.Decimal, duration time.Duration, err error)
}

// IdempotencyProcessing marks a key whose first request is still running.
const IdempotencyProcessing = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not. A nil
	// response reserves the key with IdempotencyProcessing.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation so a failed request can be retried.
	Release(ctx context.Context, key string) error
}
