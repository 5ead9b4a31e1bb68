package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// CreateTx stages a new account.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, exists := mtx.account(account.Number); exists {
		return domain.ErrAccountExists
	}

	if err := mtx.lock(ctx, []string{account.Number}); err != nil {
		return err
	}

	cp := *account
	mtx.created = append(mtx.created, &cp)
	return nil
}

// GetByNumber retrieves a committed account.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *acc
	return &cp, nil
}

// GetByNumberForUpdate locks and retrieves an account.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number string) (*domain.Account, error) {
	accounts, err := r.GetByNumbersForUpdate(ctx, tx, []string{number})
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	return accounts[0], nil
}

// GetByNumbersForUpdate locks accounts in ascending number order and returns
// those that exist.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.Transaction, numbers []string) ([]*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := mtx.lock(ctx, numbers); err != nil {
		return nil, err
	}

	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for i, n := range sorted {
		if i > 0 && sorted[i-1] == n {
			continue
		}
		if acc, ok := mtx.account(n); ok {
			accounts = append(accounts, acc)
		}
	}

	return accounts, nil
}

// UpdateBalance stages a balance change for a locked account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, number string, balance decimal.Decimal, updatedAt time.Time) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	if !mtx.held[number] {
		return errNotLocked
	}

	if _, ok := mtx.account(number); !ok {
		return domain.ErrAccountNotFound
	}

	mtx.balances[number] = balanceUpdate{balance: balance, updatedAt: updatedAt}
	return nil
}

// List returns committed accounts ordered by number.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	numbers := make([]string, 0, len(r.store.accounts))
	for n := range r.store.accounts {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	if offset >= len(numbers) {
		return []*domain.Account{}, nil
	}
	end := min(offset+limit, len(numbers))

	accounts := make([]*domain.Account, 0, end-offset)
	for _, n := range numbers[offset:end] {
		cp := *r.store.accounts[n]
		accounts = append(accounts, &cp)
	}

	return accounts, nil
}
