// Package memory is a single-process storage driver. Accounts are locked with
// per-account channel semaphores; writes are staged in the transaction and
// applied on commit under the store write lock, so readers holding the read
// lock always see whole commits.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// DefaultLockTimeout bounds how long a transaction waits for an account lock.
const DefaultLockTimeout = 5 * time.Second

// Store holds accounts and the transaction log.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*domain.Account
	entries    []*domain.Entry
	entryIndex map[string]int
	byAccount  map[string][]int

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore creates an empty Store.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	return &Store{
		accounts:    make(map[string]*domain.Account),
		entryIndex:  make(map[string]int),
		byAccount:   make(map[string][]int),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    s,
		held:     make(map[string]bool),
		balances: make(map[string]balanceUpdate),
		updates:  make(map[string]*domain.Entry),
	}, nil
}

// Snapshot returns the account and its full history under one read lock.
func (s *Store) Snapshot(ctx context.Context, accountNumber string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *acc
	return &domain.Snapshot{
		Account: &cp,
		Entries: s.entriesOfLocked(accountNumber, nil),
	}, nil
}

// Ping reports the store as always available.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) accountLock(number string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[number]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[number] = ch
	}
	return ch
}

// acquire takes the lock of one account, giving up after the store lock
// timeout or when ctx ends.
func (s *Store) acquire(ctx context.Context, number string) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case s.accountLock(number) <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrLockTimeout
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ErrLockTimeout
		}
		return ctx.Err()
	}
}

func (s *Store) release(number string) {
	<-s.accountLock(number)
}

// entriesOfLocked copies an account's entries in log order. Caller holds s.mu.
func (s *Store) entriesOfLocked(accountNumber string, keep func(*domain.Entry) bool) []*domain.Entry {
	idx := s.byAccount[accountNumber]
	out := make([]*domain.Entry, 0, len(idx))
	for _, i := range idx {
		e := s.entries[i]
		if keep != nil && !keep(e) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out
}

type balanceUpdate struct {
	balance   decimal.Decimal
	updatedAt time.Time
}

// Tx is a memory transaction. It owns the account locks it acquired until
// Commit or Rollback.
type Tx struct {
	store *Store

	held     map[string]bool
	order    []string
	created  []*domain.Account
	balances map[string]balanceUpdate
	appended []*domain.Entry
	updates  map[string]*domain.Entry
	done     bool
}

// lock acquires the given accounts in ascending number order. Accounts the
// transaction already holds are skipped.
func (t *Tx) lock(ctx context.Context, numbers []string) error {
	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)

	for i, n := range sorted {
		if t.held[n] || (i > 0 && sorted[i-1] == n) {
			continue
		}
		if err := t.store.acquire(ctx, n); err != nil {
			return err
		}
		t.held[n] = true
		t.order = append(t.order, n)
	}
	return nil
}

// account returns the account as seen by this transaction.
func (t *Tx) account(number string) (*domain.Account, bool) {
	for _, a := range t.created {
		if a.Number == number {
			cp := *a
			return &cp, true
		}
	}

	t.store.mu.RLock()
	acc, ok := t.store.accounts[number]
	var cp domain.Account
	if ok {
		cp = *acc
	}
	t.store.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if u, staged := t.balances[number]; staged {
		cp.Balance = u.balance
		cp.UpdatedAt = u.updatedAt
	}
	return &cp, true
}

// entry returns the entry as seen by this transaction.
func (t *Tx) entry(id string) (*domain.Entry, bool) {
	if e, ok := t.updates[id]; ok {
		cp := *e
		return &cp, true
	}

	for _, e := range t.appended {
		if e.ID == id {
			cp := *e
			return &cp, true
		}
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	i, ok := t.store.entryIndex[id]
	if !ok {
		return nil, false
	}
	cp := *t.store.entries[i]
	return &cp, true
}

// Commit applies staged writes atomically and releases the account locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}

	s := t.store
	s.mu.Lock()

	for _, a := range t.created {
		if _, exists := s.accounts[a.Number]; exists {
			s.mu.Unlock()
			t.finish()
			return domain.ErrAccountExists
		}
	}

	for _, a := range t.created {
		s.accounts[a.Number] = a
	}

	for number, u := range t.balances {
		acc := s.accounts[number]
		acc.Balance = u.balance
		acc.Version++
		acc.UpdatedAt = u.updatedAt
	}

	for _, e := range t.appended {
		s.entryIndex[e.ID] = len(s.entries)
		s.byAccount[e.AccountNumber] = append(s.byAccount[e.AccountNumber], len(s.entries))
		s.entries = append(s.entries, e)
	}

	for id, e := range t.updates {
		if i, ok := s.entryIndex[id]; ok {
			s.entries[i] = e
		}
	}

	s.mu.Unlock()
	t.finish()

	return nil
}

// Rollback discards staged writes and releases the account locks.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	for i := len(t.order) - 1; i >= 0; i-- {
		t.store.release(t.order[i])
	}
	t.order = nil
	t.held = nil
}

var errTxDone = errors.New("memory: transaction already closed")

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.done {
		return nil, errTxDone
	}
	return mtx, nil
}
