package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
// Without an override it behaves like a table and hands out copies.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateTxFunc              func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByNumberFunc           func(ctx context.Context, number string) (*domain.Account, error)
	GetByNumberForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, number string) (*domain.Account, error)
	GetByNumbersForUpdateFunc func(ctx context.Context, tx usecase.Transaction, numbers []string) ([]*domain.Account, error)
	UpdateBalanceFunc         func(ctx context.Context, tx usecase.Transaction, number string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc                  func(ctx context.Context, limit, offset int) ([]*domain.Account, error)

	// LockOrder records the numbers passed to GetByNumbersForUpdate.
	LockOrder [][]string
}

func NewMockAccountRepository(accounts ...*domain.Account) *MockAccountRepository {
	m := &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
	for _, a := range accounts {
		m.accounts[a.Number] = a
	}
	return m
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Number]; ok {
		return domain.ErrAccountExists
	}
	cp := *account
	m.accounts[account.Number] = &cp
	return nil
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[number]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number string) (*domain.Account, error) {
	if m.GetByNumberForUpdateFunc != nil {
		return m.GetByNumberForUpdateFunc(ctx, tx, number)
	}
	return m.GetByNumber(ctx, number)
}

func (m *MockAccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.Transaction, numbers []string) ([]*domain.Account, error) {
	m.mu.Lock()
	m.LockOrder = append(m.LockOrder, append([]string(nil), numbers...))
	m.mu.Unlock()

	if m.GetByNumbersForUpdateFunc != nil {
		return m.GetByNumbersForUpdateFunc(ctx, tx, numbers)
	}
	var accounts []*domain.Account
	for _, n := range numbers {
		if acc, err := m.GetByNumber(ctx, n); err == nil {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, number string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, number, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[number]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		cp := *acc
		accounts = append(accounts, &cp)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number < accounts[j].Number })
	if offset >= len(accounts) {
		return nil, nil
	}
	end := min(offset+limit, len(accounts))
	return accounts[offset:end], nil
}

// Balance returns the stored balance of an account.
func (m *MockAccountRepository) Balance(number string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[number]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Entry, error)
	UpdateLoanStateFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	ListLoansFunc       func(ctx context.Context, accountNumber string) ([]*domain.Entry, error)
	GetBalanceAtFunc    func(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error)
}

func NewMockEntryRepository(entries ...*domain.Entry) *MockEntryRepository {
	return &MockEntryRepository{entries: entries}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) UpdateLoanState(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.UpdateLoanStateFunc != nil {
		return m.UpdateLoanStateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == entry.ID {
			cp := *entry
			m.entries[i] = &cp
			return nil
		}
	}
	return domain.ErrEntryNotFound
}

func (m *MockEntryRepository) ListLoansByAccount(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
	if m.ListLoansFunc != nil {
		return m.ListLoansFunc(ctx, accountNumber)
	}
	var loans []*domain.Entry
	for _, e := range m.ByAccount(accountNumber) {
		if e.Kind.IsLoan() {
			loans = append(loans, e)
		}
	}
	return loans, nil
}

func (m *MockEntryRepository) ListLoansByAccountTx(ctx context.Context, tx usecase.Transaction, accountNumber string) ([]*domain.Entry, error) {
	return m.ListLoansByAccount(ctx, accountNumber)
}

func (m *MockEntryRepository) GetBalanceAtTime(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
	if m.GetBalanceAtFunc != nil {
		return m.GetBalanceAtFunc(ctx, accountNumber, at)
	}
	return domain.BalanceAt(m.ByAccount(accountNumber), at), nil
}

// ByAccount returns copies of the stored entries of an account in insertion order.
func (m *MockEntryRepository) ByAccount(accountNumber string) []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.AccountNumber == accountNumber {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

// Len returns the number of stored entries.
func (m *MockEntryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockSnapshotReader builds snapshots from the account and entry mocks.
type MockSnapshotReader struct {
	Accounts *MockAccountRepository
	Entries  *MockEntryRepository
}

func (m *MockSnapshotReader) Snapshot(ctx context.Context, accountNumber string) (*domain.Snapshot, error) {
	acc, err := m.Accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Account: acc, Entries: m.Entries.ByAccount(accountNumber)}, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	TotalBalance decimal.Decimal
	TotalNet     decimal.Decimal
	Err          error
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	return m.TotalBalance, m.TotalNet, m.Err
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu  sync.Mutex
	Txs []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.Txs = append(m.Txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// Committed counts committed transactions.
func (m *MockTransactionManager) Committed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tx := range m.Txs {
		if tx.Committed {
			n++
		}
	}
	return n
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
// Without an override it yields zero-padded sequence numbers.
type MockIDGenerator struct {
	GenerateFunc func() string
	seq          atomic.Int64
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return fmt.Sprintf("%010d", m.seq.Add(1))
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu    sync.RWMutex
	store map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		store: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte(usecase.IdempotencyProcessing)
	}
	m.store[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// Get returns the stored value for key.
func (m *MockIdempotencyStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	return v, ok
}

// RecordingQueue collects enqueued notifications.
type RecordingQueue struct {
	mu            sync.Mutex
	Notifications []domain.Notification
}

func (q *RecordingQueue) Enqueue(n domain.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Notifications = append(q.Notifications, n)
}

// Len returns the number of enqueued notifications.
func (q *RecordingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Notifications)
}

// StaticBankruptcyFlag is a fixed bankruptcy flag.
type StaticBankruptcyFlag struct {
	Bankrupt bool
	Err      error
}

func (f StaticBankruptcyFlag) IsInstitutionBankrupt(ctx context.Context) (bool, error) {
	return f.Bankrupt, f.Err
}
