package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when balances and the transaction log disagree.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match the transaction log")
	// ErrInvalidDateRange is returned when a statement range ends before it starts.
	ErrInvalidDateRange = errors.New("end date is before start date")
)

// ReportUseCase serves read-only views of the ledger.
type ReportUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	snapshots   SnapshotReader
	ledgerRepo  LedgerRepository
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	snapshots SnapshotReader,
	ledgerRepo LedgerRepository,
) *ReportUseCase {
	return &ReportUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		snapshots:   snapshots,
		ledgerRepo:  ledgerRepo,
	}
}

// StatementInput represents input for an account statement.
type StatementInput struct {
	AccountNumber string
	Range         *domain.DateRange
}

// Statement lists an account's entries. With a range the total is the sum of
// the balance movements that took effect in it; without one the total is the
// current balance.
func (uc *ReportUseCase) Statement(ctx context.Context, input StatementInput) (*domain.Statement, error) {
	if input.Range != nil && input.Range.End.Before(input.Range.Start) {
		return nil, ErrInvalidDateRange
	}

	snap, err := uc.snapshots.Snapshot(ctx, input.AccountNumber)
	if err != nil {
		return nil, err
	}

	return domain.BuildStatement(snap, input.Range), nil
}

// ListLoans returns every loan entry of an account.
func (uc *ReportUseCase) ListLoans(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
	if _, err := uc.accountRepo.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return uc.entryRepo.ListLoansByAccount(ctx, accountNumber)
}

// BalanceAt returns the account balance as it stood at the given instant.
func (uc *ReportUseCase) BalanceAt(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByNumber(ctx, accountNumber); err != nil {
		return decimal.Zero, err
	}
	return uc.entryRepo.GetBalanceAtTime(ctx, accountNumber, at)
}

// ReconciliationResult compares an account's stored balance with the balance
// obtained by replaying its log.
type ReconciliationResult struct {
	AccountNumber     string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount replays one account's log from a consistent snapshot.
func (uc *ReportUseCase) ReconcileAccount(ctx context.Context, accountNumber string) (*ReconciliationResult, error) {
	snap, err := uc.snapshots.Snapshot(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	calculated := domain.ReplayBalance(decimal.Zero, snap.Entries)
	diff := snap.Account.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountNumber:     accountNumber,
		RecordedBalance:   snap.Account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ConsistencyReport is the ledger-wide balance check.
type ConsistencyReport struct {
	TotalBalance decimal.Decimal
	TotalEntries decimal.Decimal
	Consistent   bool
	CheckedAt    time.Time
}

// CheckConsistency compares the sum of all balances with the sum of all signed
// entry amounts. It returns ErrInconsistentLedger alongside the report when
// they differ.
func (uc *ReportUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totalBalance, totalNet, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, domain.Infrastructure(err)
	}

	report := &ConsistencyReport{
		TotalBalance: totalBalance,
		TotalEntries: totalNet,
		Consistent:   totalBalance.Equal(totalNet),
		CheckedAt:    time.Now().UTC(),
	}

	if !report.Consistent {
		return report, fmt.Errorf(
			"%w: balances=%s entries=%s difference=%s",
			ErrInconsistentLedger,
			totalBalance.String(),
			totalNet.String(),
			totalBalance.Sub(totalNet).String(),
		)
	}

	return report, nil
}
