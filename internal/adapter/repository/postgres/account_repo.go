package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// CreateTx inserts a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.CreateAccount(ctx, generated.CreateAccountParams{
		Number:     account.Number,
		HolderName: account.HolderName,
		Email:      account.Email,
		Balance:    decimalToNumeric(account.Balance),
		Version:    account.Version,
		CreatedAt:  timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(account.UpdatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return domain.ErrAccountExists
	}

	return err
}

// GetByNumber retrieves an account by number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByNumberForUpdate retrieves an account by number with a FOR UPDATE lock.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number string) (*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetAccountByNumberForUpdate(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// GetByNumbersForUpdate locks several accounts. The query orders by number so
// concurrent callers always acquire row locks in the same order.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.Transaction, numbers []string) ([]*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	rows, err := queries.GetAccountsByNumbersForUpdate(ctx, numbers)
	if err != nil {
		return nil, mapError(err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// UpdateBalance updates the balance of an account and bumps its version.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, number string, balance decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	affected, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		Number:    number,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts ordered by number.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		Number:     row.Number,
		HolderName: row.HolderName,
		Email:      row.Email,
		Balance:    numericToDecimal(row.Balance),
		Version:    row.Version,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
