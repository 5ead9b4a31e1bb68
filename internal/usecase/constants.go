package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a ledger unit of work,
	// lock acquisition included.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// maxAccountNumberAttempts bounds retries when a generated account number collides.
	maxAccountNumberAttempts = 5
)

// Operation names used for logging and metrics.
const (
	OpDeposit     = "deposit"
	OpWithdraw    = "withdraw"
	OpRequestLoan = "request_loan"
	OpApproveLoan = "approve_loan"
	OpPayLoan     = "pay_loan"
	OpTransfer    = "transfer"
	OpOpenAccount = "open_account"
)
