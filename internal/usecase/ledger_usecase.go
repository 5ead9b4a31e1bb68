package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// LedgerUseCase is the ledger engine. Every mutating operation runs as one
// unit of work that locks the participating accounts, appends to the
// transaction log, updates balances and commits. Notifications are queued
// only after a successful commit.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	bankruptcy  BankruptcyFlag
	queue       NotificationQueue
	policy      domain.LoanPolicy

	retrier  Retrier
	recorder OperationRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	bankruptcy BankruptcyFlag,
	queue NotificationQueue,
	policy domain.LoanPolicy,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		bankruptcy:  bankruptcy,
		queue:       queue,
		policy:      policy,
		retrier:     noRetry{},
		recorder:    noRecorder{},
		logger:      zerolog.Nop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier wrapped around each unit of work.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	if r != nil {
		uc.retrier = r
	}
	return uc
}

// WithRecorder sets the operation metrics recorder.
func (uc *LedgerUseCase) WithRecorder(r OperationRecorder) *LedgerUseCase {
	if r != nil {
		uc.recorder = r
	}
	return uc
}

// WithLogger sets the logger.
func (uc *LedgerUseCase) WithLogger(l zerolog.Logger) *LedgerUseCase {
	uc.logger = l
	return uc
}

// WithClock overrides the time source.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// MovementInput represents input for a single-account balance movement.
type MovementInput struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// Deposit credits an account. It fails only on invalid input or infrastructure errors.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input MovementInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(OpDeposit, input.Amount, err)
	}

	var entry *domain.Entry
	err := uc.execute(ctx, OpDeposit, input.Amount, func(ctx context.Context, tx Transaction) ([]domain.Notification, error) {
		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.AccountNumber)
		if err != nil {
			return nil, err
		}

		now := uc.now()
		entry, err = uc.appendMovement(ctx, tx, account, domain.EntryKindDeposit, input.Amount, now)
		if err != nil {
			return nil, err
		}

		return []domain.Notification{
			domain.NewNotification(account, domain.TemplateDeposit, input.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Withdraw debits an account unless the institution is bankrupt. The resulting
// balance is not checked for sufficiency.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input MovementInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(OpWithdraw, input.Amount, err)
	}

	var entry *domain.Entry
	err := uc.execute(ctx, OpWithdraw, input.Amount, func(ctx context.Context, tx Transaction) ([]domain.Notification, error) {
		bankrupt, err := uc.bankruptcy.IsInstitutionBankrupt(ctx)
		if err != nil {
			return nil, domain.Infrastructure(err)
		}

		if bankrupt {
			return nil, domain.ErrInstitutionBankrupt
		}

		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.AccountNumber)
		if err != nil {
			return nil, err
		}

		now := uc.now()
		entry, err = uc.appendMovement(ctx, tx, account, domain.EntryKindWithdrawal, input.Amount, now)
		if err != nil {
			return nil, err
		}

		return []domain.Notification{
			domain.NewNotification(account, domain.TemplateWithdrawal, input.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

type unitOfWork func(ctx context.Context, tx Transaction) ([]domain.Notification, error)

// execute runs work inside a retried transaction, records the outcome and
// queues the returned notifications once the commit has succeeded.
func (uc *LedgerUseCase) execute(ctx context.Context, op string, amount decimal.Decimal, work unitOfWork) error {
	start := time.Now()

	var notifications []domain.Notification
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		notifications, err = uc.inTransaction(ctx, work)
		return err
	})
	err = domain.Infrastructure(err)

	uc.recorder.RecordOperation(op, amount, time.Since(start), err)

	if err != nil {
		uc.logFailure(op, amount, err)
		return err
	}

	for _, n := range notifications {
		uc.queue.Enqueue(n)
	}

	return nil
}

func (uc *LedgerUseCase) inTransaction(ctx context.Context, work unitOfWork) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	notifications, err := work(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Past this point the request can no longer be cancelled.
	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}

	return notifications, nil
}

// appendMovement writes one entry and the matching balance update for a
// locked account, then advances the in-memory account.
func (uc *LedgerUseCase) appendMovement(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	kind domain.EntryKind,
	amount decimal.Decimal,
	now time.Time,
) (*domain.Entry, error) {
	newBalance := account.Balance.Add(kind.NetEffect(amount))

	entry := &domain.Entry{
		ID:             uc.idGen.Generate(),
		AccountNumber:  account.Number,
		Kind:           kind,
		Amount:         amount,
		BalanceAfter:   newBalance,
		AccountVersion: account.Version + 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.setBalance(ctx, tx, account, newBalance, now); err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *LedgerUseCase) setBalance(ctx context.Context, tx Transaction, account *domain.Account, balance decimal.Decimal, now time.Time) error {
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.Number, balance, now); err != nil {
		return err
	}

	account.Balance = balance
	account.Version++
	account.UpdatedAt = now

	return nil
}

func (uc *LedgerUseCase) reject(op string, amount decimal.Decimal, err error) error {
	uc.recorder.RecordOperation(op, amount, 0, err)
	return err
}

func (uc *LedgerUseCase) logFailure(op string, amount decimal.Decimal, err error) {
	event := uc.logger.Error()
	if domain.IsBusinessError(err) {
		event = uc.logger.Info()
	}

	event.
		Err(err).
		Str("operation", op).
		Str("amount", amount.String()).
		Msg("ledger operation rejected")
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type noRecorder struct{}

func (noRecorder) RecordOperation(string, decimal.Decimal, time.Duration, error) {}
