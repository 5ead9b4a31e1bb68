package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/idgen"
	"github.com/iho/bankledger/internal/usecase"
)

type ledgerFixture struct {
	store    *Store
	accounts *AccountRepository
	entries  *EntryRepository
	flag     *BankruptcyFlag
	engine   *usecase.LedgerUseCase
	opener   *usecase.AccountUseCase
	reports  *usecase.ReportUseCase
}

type discardQueue struct{}

func (discardQueue) Enqueue(domain.Notification) {}

func newLedgerFixture(lockTimeout time.Duration) *ledgerFixture {
	store := NewStore(lockTimeout)
	accounts := NewAccountRepository(store)
	entries := NewEntryRepository(store)
	flag := NewBankruptcyFlag()
	ids := idgen.NewULIDGenerator()

	return &ledgerFixture{
		store:    store,
		accounts: accounts,
		entries:  entries,
		flag:     flag,
		engine: usecase.NewLedgerUseCase(store, accounts, entries, ids, flag, discardQueue{},
			domain.NewLoanPolicy(domain.DefaultMaxApprovedLoans)),
		opener:  usecase.NewAccountUseCase(store, accounts, entries, ids, idgen.NewAccountNumberGenerator()),
		reports: usecase.NewReportUseCase(accounts, entries, store, NewLedgerRepository(store)),
	}
}

func (f *ledgerFixture) open(t *testing.T, number string, balance int64) {
	t.Helper()
	_, err := f.opener.OpenAccount(context.Background(), usecase.OpenAccountInput{
		HolderName:     "Holder " + number,
		Email:          number + "@example.com",
		AccountNumber:  number,
		OpeningBalance: decimal.NewFromInt(balance),
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return acc.Balance
}

func (f *ledgerFixture) assertConsistent(t *testing.T) {
	t.Helper()
	report, err := f.reports.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestConcurrentDepositsAreNotLost(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 0)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Deposit(context.Background(), usecase.MovementInput{
				AccountNumber: "1000000001",
				Amount:        decimal.NewFromInt(10),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(1000)))

	snap, err := f.store.Snapshot(context.Background(), "1000000001")
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 100)
	f.assertConsistent(t)
}

func TestOpposingTransfersDoNotDeadlock(t *testing.T) {
	f := newLedgerFixture(2 * time.Second)
	f.open(t, "1000000001", 10000)
	f.open(t, "1000000002", 10000)

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := range 200 {
		from, to := "1000000001", "1000000002"
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Transfer(context.Background(), usecase.TransferInput{
				FromAccountNumber: from,
				ToAccountNumber:   to,
				Amount:            decimal.NewFromInt(5),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	total := f.balance(t, "1000000001").Add(f.balance(t, "1000000002"))
	assert.True(t, total.Equal(decimal.NewFromInt(20000)), "money created or destroyed: %s", total)
	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(10000)))
	f.assertConsistent(t)
}

func TestReplayReproducesBalance(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 500)
	f.open(t, "1000000002", 0)
	ctx := context.Background()

	in := func(n string, amount int64) usecase.MovementInput {
		return usecase.MovementInput{AccountNumber: n, Amount: decimal.NewFromInt(amount)}
	}

	_, err := f.engine.Deposit(ctx, in("1000000001", 120))
	require.NoError(t, err)
	_, err = f.engine.Withdraw(ctx, in("1000000001", 70))
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, usecase.TransferInput{FromAccountNumber: "1000000001", ToAccountNumber: "1000000002", Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, usecase.TransferInput{FromAccountNumber: "1000000001", ToAccountNumber: "1000000002", Amount: decimal.NewFromInt(100000)})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	_, err = f.engine.Deposit(ctx, in("1000000001", 0))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	loan, err := f.engine.RequestLoan(ctx, in("1000000001", 50))
	require.NoError(t, err)
	_, err = f.engine.ApproveLoan(ctx, loan.ID)
	require.NoError(t, err)
	_, err = f.engine.PayLoan(ctx, loan.ID)
	require.NoError(t, err)

	for _, number := range []string{"1000000001", "1000000002"} {
		snap, err := f.store.Snapshot(ctx, number)
		require.NoError(t, err)
		assert.True(t, domain.ReplayBalance(decimal.Zero, snap.Entries).Equal(snap.Account.Balance),
			"account %s replay mismatch", number)

		result, err := f.reports.ReconcileAccount(ctx, number)
		require.NoError(t, err)
		assert.True(t, result.IsReconciled)
	}

	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(350)))
	assert.True(t, f.balance(t, "1000000002").Equal(decimal.NewFromInt(200)))
	f.assertConsistent(t)
}

func TestBalanceAfterChainsPerAccount(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 0)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := f.engine.Deposit(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(int64(i))})
		require.NoError(t, err)
	}
	_, err := f.engine.Withdraw(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	snap, err := f.store.Snapshot(ctx, "1000000001")
	require.NoError(t, err)

	prev := decimal.Zero
	for i, e := range snap.Entries {
		assert.True(t, e.BalanceAfter.Equal(prev.Add(e.SignedAmount())), "entry %d breaks the chain", i)
		if i > 0 {
			assert.Greater(t, e.ID, snap.Entries[i-1].ID, "ids must be increasing")
		}
		prev = e.BalanceAfter
	}
	assert.True(t, prev.Equal(decimal.NewFromInt(-5)))
}

func TestWithdrawBlockedWhileBankrupt(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 1000)
	ctx := context.Background()

	require.NoError(t, f.flag.SetInstitutionBankrupt(ctx, true))

	_, err := f.engine.Withdraw(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrInstitutionBankrupt)
	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(1000)))

	require.NoError(t, f.flag.SetInstitutionBankrupt(ctx, false))

	_, err = f.engine.Withdraw(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
}

func TestLoanCapWithRealStore(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 10)
	ctx := context.Background()

	for range 3 {
		loan, err := f.engine.RequestLoan(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)
		_, err = f.engine.ApproveLoan(ctx, loan.ID)
		require.NoError(t, err)
	}

	before, err := f.store.Snapshot(ctx, "1000000001")
	require.NoError(t, err)

	_, err = f.engine.RequestLoan(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, domain.ErrLoanLimitExceeded)

	after, err := f.store.Snapshot(ctx, "1000000001")
	require.NoError(t, err)
	assert.Len(t, after.Entries, len(before.Entries))

	loans, err := f.reports.ListLoans(ctx, "1000000001")
	require.NoError(t, err)
	assert.Len(t, loans, 3)
}

func TestLockTimeoutIsInfrastructureFailure(t *testing.T) {
	f := newLedgerFixture(20 * time.Millisecond)
	f.open(t, "1000000001", 100)
	ctx := context.Background()

	holder, err := f.store.Begin(ctx)
	require.NoError(t, err)
	_, err = f.accounts.GetByNumberForUpdate(ctx, holder, "1000000001")
	require.NoError(t, err)

	_, err = f.engine.Deposit(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, domain.ErrLockTimeout)
	require.ErrorIs(t, err, domain.ErrInfrastructure)
	assert.False(t, domain.IsBusinessError(err))

	require.NoError(t, holder.Rollback(ctx))

	_, err = f.engine.Deposit(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(105)))
}

func TestUncommittedWritesAreInvisible(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 100)
	ctx := context.Background()

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)

	acc, err := f.accounts.GetByNumberForUpdate(ctx, tx, "1000000001")
	require.NoError(t, err)
	require.NoError(t, f.entries.Create(ctx, tx, &domain.Entry{
		ID: "zz", AccountNumber: acc.Number, Kind: domain.EntryKindDeposit, Amount: decimal.NewFromInt(1),
	}))
	require.NoError(t, f.accounts.UpdateBalance(ctx, tx, acc.Number, decimal.NewFromInt(101), time.Now()))

	snap, err := f.store.Snapshot(ctx, "1000000001")
	require.NoError(t, err)
	assert.True(t, snap.Account.Balance.Equal(decimal.NewFromInt(100)))
	assert.Len(t, snap.Entries, 1)

	require.NoError(t, tx.Rollback(ctx))

	snap, err = f.store.Snapshot(ctx, "1000000001")
	require.NoError(t, err)
	assert.True(t, snap.Account.Balance.Equal(decimal.NewFromInt(100)))
	f.assertConsistent(t)
}

func TestWritesRequireLock(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 100)
	ctx := context.Background()

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = f.accounts.UpdateBalance(ctx, tx, "1000000001", decimal.NewFromInt(1), time.Now())
	assert.True(t, errors.Is(err, errNotLocked))
}

func TestBalanceAtTime(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 0)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.engine.WithClock(func() time.Time { return clock })

	_, err := f.engine.Deposit(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	clock = clock.Add(24 * time.Hour)
	_, err = f.engine.Withdraw(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)

	at, err := f.reports.BalanceAt(ctx, "1000000001", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, at.Equal(decimal.NewFromInt(100)))

	at, err = f.reports.BalanceAt(ctx, "1000000001", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	at, err = f.reports.BalanceAt(ctx, "1000000001", clock)
	require.NoError(t, err)
	assert.True(t, at.Equal(decimal.NewFromInt(60)))
}

func TestBalanceHistoryAcrossLoanLifecycle(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 0)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }
	clock := day(1)
	f.engine.WithClock(func() time.Time { return clock })

	_, err := f.engine.Deposit(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	clock = day(2)
	loan, err := f.engine.RequestLoan(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	clock = day(3)
	_, err = f.engine.ApproveLoan(ctx, loan.ID)
	require.NoError(t, err)

	balanceAt := func(at time.Time) decimal.Decimal {
		t.Helper()
		b, err := f.reports.BalanceAt(ctx, "1000000001", at)
		require.NoError(t, err)
		return b
	}
	assert.True(t, balanceAt(day(4)).Equal(decimal.NewFromInt(150)))

	clock = day(5)
	result, err := f.engine.PayLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.True(t, result.Paid)

	want := map[int]int64{1: 100, 2: 100, 3: 150, 4: 150, 5: 100, 6: 100}
	for d, w := range want {
		assert.True(t, balanceAt(day(d)).Equal(decimal.NewFromInt(w)), "day %d: got %s, want %d", d, balanceAt(day(d)), w)
	}

	stmt, err := f.reports.Statement(ctx, usecase.StatementInput{
		AccountNumber: "1000000001",
		Range:         &domain.DateRange{Start: day(3), End: day(4)},
	})
	require.NoError(t, err)
	require.Len(t, stmt.Entries, 1)
	assert.Equal(t, loan.ID, stmt.Entries[0].ID)
	assert.True(t, stmt.Total.Equal(decimal.NewFromInt(50)), "approval credit missing from statement: %s", stmt.Total)

	stmt, err = f.reports.Statement(ctx, usecase.StatementInput{
		AccountNumber: "1000000001",
		Range:         &domain.DateRange{Start: day(5), End: day(5)},
	})
	require.NoError(t, err)
	assert.True(t, stmt.Total.Equal(decimal.NewFromInt(-50)))

	f.assertConsistent(t)
}

func TestPayingExternallyFlaggedLoanKeepsLedgerConsistent(t *testing.T) {
	f := newLedgerFixture(0)
	f.open(t, "1000000001", 200)
	ctx := context.Background()

	loan, err := f.engine.RequestLoan(ctx, usecase.MovementInput{AccountNumber: "1000000001", Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)

	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	_, err = f.accounts.GetByNumberForUpdate(ctx, tx, "1000000001")
	require.NoError(t, err)
	entry, err := f.entries.GetByIDForUpdate(ctx, tx, loan.ID)
	require.NoError(t, err)
	entry.LoanApproved = true
	require.NoError(t, f.entries.UpdateLoanState(ctx, tx, entry))
	require.NoError(t, tx.Commit(ctx))

	result, err := f.engine.PayLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.True(t, result.Paid)
	assert.True(t, f.balance(t, "1000000001").Equal(decimal.NewFromInt(160)))

	rec, err := f.reports.ReconcileAccount(ctx, "1000000001")
	require.NoError(t, err)
	assert.True(t, rec.IsReconciled, "replayed %s, recorded %s", rec.CalculatedBalance, rec.RecordedBalance)
	f.assertConsistent(t)
}
