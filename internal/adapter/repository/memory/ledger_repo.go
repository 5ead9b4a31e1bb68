package memory

import (
	"context"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency sums all balances and all signed entry amounts from one view.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totalBalance := decimal.Zero
	for _, acc := range r.store.accounts {
		totalBalance = totalBalance.Add(acc.Balance)
	}

	totalNet := decimal.Zero
	for _, e := range r.store.entries {
		totalNet = totalNet.Add(e.SignedAmount())
	}

	return totalBalance, totalNet, nil
}

// BankruptcyFlag is an in-process institution bankruptcy flag.
type BankruptcyFlag struct {
	bankrupt atomic.Bool
}

// NewBankruptcyFlag creates a cleared flag.
func NewBankruptcyFlag() *BankruptcyFlag {
	return &BankruptcyFlag{}
}

// IsInstitutionBankrupt reports the flag.
func (f *BankruptcyFlag) IsInstitutionBankrupt(context.Context) (bool, error) {
	return f.bankrupt.Load(), nil
}

// SetInstitutionBankrupt sets or clears the flag.
func (f *BankruptcyFlag) SetInstitutionBankrupt(_ context.Context, bankrupt bool) error {
	f.bankrupt.Store(bankrupt)
	return nil
}
