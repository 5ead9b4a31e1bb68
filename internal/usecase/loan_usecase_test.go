package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func errorsIs(err, target error) bool {
	return errors.Is(err, target)
}

func loanEntry(id, account string, kind domain.EntryKind, amount int64) *domain.Entry {
	return &domain.Entry{
		ID:            id,
		AccountNumber: account,
		Kind:          kind,
		Amount:        decimal.NewFromInt(amount),
		LoanApproved:  kind != domain.EntryKindLoanRequested,
		CreatedAt:     time.Unix(0, 0).UTC(),
	}
}

func TestLedgerUseCase_RequestLoan(t *testing.T) {
	t.Run("appends a request without touching the balance", func(t *testing.T) {
		f := newEngine(nil, []*domain.Account{newAccount("1000000001", 100)})

		entry, err := f.uc.RequestLoan(context.Background(), usecase.MovementInput{
			AccountNumber: "1000000001",
			Amount:        decimal.NewFromInt(1000),
		})
		require.NoError(t, err)

		assert.Equal(t, domain.EntryKindLoanRequested, entry.Kind)
		assert.False(t, entry.LoanApproved)
		assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(100)))
		assert.True(t, f.accounts.Balance("1000000001").Equal(decimal.NewFromInt(100)))
		require.Equal(t, 1, f.queue.Len())
		assert.Equal(t, domain.TemplateLoanRequest, f.queue.Notifications[0].Template)
	})

	t.Run("rejected with three approved loans", func(t *testing.T) {
		f := newEngine(nil, []*domain.Account{newAccount("1000000001", 100)},
			loanEntry("L1", "1000000001", domain.EntryKindLoanApproved, 10),
			loanEntry("L2", "1000000001", domain.EntryKindLoanApproved, 10),
			loanEntry("L3", "1000000001", domain.EntryKindLoanApproved, 10),
		)

		_, err := f.uc.RequestLoan(context.Background(), usecase.MovementInput{
			AccountNumber: "1000000001",
			Amount:        decimal.NewFromInt(10),
		})

		require.ErrorIs(t, err, domain.ErrLoanLimitExceeded)
		assert.Equal(t, 3, f.entries.Len())
		assert.Zero(t, f.queue.Len())
	})

	t.Run("paid and pending loans do not count", func(t *testing.T) {
		f := newEngine(nil, []*domain.Account{newAccount("1000000001", 100)},
			loanEntry("L1", "1000000001", domain.EntryKindLoanApproved, 10),
			loanEntry("L2", "1000000001", domain.EntryKindLoanApproved, 10),
			loanEntry("L3", "1000000001", domain.EntryKindLoanPaid, 10),
			loanEntry("L4", "1000000001", domain.EntryKindLoanRequested, 10),
			loanEntry("L5", "1000000002", domain.EntryKindLoanApproved, 10),
		)

		_, err := f.uc.RequestLoan(context.Background(), usecase.MovementInput{
			AccountNumber: "1000000001",
			Amount:        decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	})
}

func TestLedgerUseCase_ApproveLoan(t *testing.T) {
	f := newEngine(nil, []*domain.Account{newAccount("1000000001", 100)},
		loanEntry("L1", "1000000001", domain.EntryKindLoanRequested, 400),
	)

	loan, err := f.uc.ApproveLoan(context.Background(), "L1")
	require.NoError(t, err)

	assert.Equal(t, domain.EntryKindLoanApproved, loan.Kind)
	assert.True(t, loan.LoanApproved)
	assert.True(t, loan.BalanceAfter.Equal(decimal.NewFromInt(500)))
	assert.True(t, f.accounts.Balance("1000000001").Equal(decimal.NewFromInt(500)))

	_, err = f.uc.ApproveLoan(context.Background(), "L1")
	require.ErrorIs(t, err, domain.ErrLoanNotPending)
	assert.True(t, f.accounts.Balance("1000000001").Equal(decimal.NewFromInt(500)))
}

func TestLedgerUseCase_PayLoan(t *testing.T) {
	tests := []struct {
		name        string
		loan        *domain.Entry
		balance     int64
		entryID     string
		wantErr     error
		wantPaid    bool
		wantBalance int64
	}{
		{
			name:        "approved loan is repaid",
			loan:        loanEntry("L1", "1000000001", domain.EntryKindLoanApproved, 100),
			balance:     250,
			entryID:     "L1",
			wantPaid:    true,
			wantBalance: 150,
		},
		{
			name:        "amount equal to balance is refused",
			loan:        loanEntry("L1", "1000000001", domain.EntryKindLoanApproved, 250),
			balance:     250,
			entryID:     "L1",
			wantErr:     domain.ErrInsufficientFunds,
			wantBalance: 250,
		},
		{
			name:        "requested loan is a no-op",
			loan:        loanEntry("L1", "1000000001", domain.EntryKindLoanRequested, 100),
			balance:     250,
			entryID:     "L1",
			wantPaid:    false,
			wantBalance: 250,
		},
		{
			name:        "paid loan is rejected",
			loan:        loanEntry("L1", "1000000001", domain.EntryKindLoanPaid, 100),
			balance:     250,
			entryID:     "L1",
			wantErr:     domain.ErrLoanAlreadyPaid,
			wantBalance: 250,
		},
		{
			name:        "unknown entry",
			loan:        loanEntry("L1", "1000000001", domain.EntryKindLoanApproved, 100),
			balance:     250,
			entryID:     "missing",
			wantErr:     domain.ErrEntryNotFound,
			wantBalance: 250,
		},
		{
			name:        "non-loan entry",
			loan:        loanEntry("D1", "1000000001", domain.EntryKindDeposit, 100),
			balance:     250,
			entryID:     "D1",
			wantErr:     domain.ErrEntryNotFound,
			wantBalance: 250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngine(nil, []*domain.Account{newAccount("1000000001", tt.balance)}, tt.loan)
			before := *tt.loan

			result, err := f.uc.PayLoan(context.Background(), tt.entryID)

			assert.True(t, f.accounts.Balance("1000000001").Equal(decimal.NewFromInt(tt.wantBalance)),
				"balance %s", f.accounts.Balance("1000000001"))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored := f.entries.ByAccount("1000000001")[0]
				assert.Equal(t, before.Kind, stored.Kind)
				assert.Zero(t, f.queue.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, result.Paid)

			stored := f.entries.ByAccount("1000000001")[0]
			if tt.wantPaid {
				assert.Equal(t, domain.EntryKindLoanPaid, stored.Kind)
				assert.True(t, stored.BalanceAfter.Equal(decimal.NewFromInt(tt.wantBalance)))
				require.Equal(t, 1, f.queue.Len())
				assert.Equal(t, domain.TemplateLoanPaid, f.queue.Notifications[0].Template)
			} else {
				assert.Equal(t, before.Kind, stored.Kind)
				assert.Zero(t, f.queue.Len())
			}
		})
	}
}
