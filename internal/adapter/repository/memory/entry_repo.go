package memory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

var errNotLocked = errors.New("memory: account is not locked by this transaction")

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages an entry. The owning account must be locked by tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	if !mtx.held[entry.AccountNumber] {
		return errNotLocked
	}

	cp := *entry
	mtx.appended = append(mtx.appended, &cp)
	return nil
}

// GetByID retrieves a committed entry.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i, ok := r.store.entryIndex[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	cp := *r.store.entries[i]
	return &cp, nil
}

// GetByIDForUpdate retrieves an entry whose account is locked by tx.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	e, ok := mtx.entry(id)
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	if !mtx.held[e.AccountNumber] {
		return nil, errNotLocked
	}

	return e, nil
}

// UpdateLoanState stages the new kind, flag and balance snapshot of a loan entry.
func (r *EntryRepository) UpdateLoanState(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	if !mtx.held[entry.AccountNumber] {
		return errNotLocked
	}

	if _, ok := mtx.entry(entry.ID); !ok {
		return domain.ErrEntryNotFound
	}

	cp := *entry
	mtx.updates[entry.ID] = &cp
	return nil
}

// ListLoansByAccount lists committed loan entries of an account.
func (r *EntryRepository) ListLoansByAccount(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.entriesOfLocked(accountNumber, isLoan), nil
}

// ListLoansByAccountTx lists loan entries of an account as seen by tx.
func (r *EntryRepository) ListLoansByAccountTx(ctx context.Context, tx usecase.Transaction, accountNumber string) ([]*domain.Entry, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	loans, err := r.ListLoansByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	for i, l := range loans {
		if u, ok := mtx.updates[l.ID]; ok {
			cp := *u
			loans[i] = &cp
		}
	}

	for _, e := range mtx.appended {
		if e.AccountNumber == accountNumber && e.Kind.IsLoan() {
			cp := *e
			loans = append(loans, &cp)
		}
	}

	return loans, nil
}

// GetBalanceAtTime replays the movements of the account's committed entries
// that took effect at or before at. Loans count from approval and payment time.
func (r *EntryRepository) GetBalanceAtTime(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.accounts[accountNumber]; !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	entries := make([]*domain.Entry, 0, len(r.store.byAccount[accountNumber]))
	for _, i := range r.store.byAccount[accountNumber] {
		entries = append(entries, r.store.entries[i])
	}

	return domain.BalanceAt(entries, at), nil
}

func isLoan(e *domain.Entry) bool {
	return e.Kind.IsLoan()
}
