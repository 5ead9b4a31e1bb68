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

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool Pool) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create appends an entry to the transaction log.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:             entry.ID,
		AccountNumber:  entry.AccountNumber,
		Kind:           string(entry.Kind),
		Amount:         decimalToNumeric(entry.Amount),
		BalanceAfter:   decimalToNumeric(entry.BalanceAfter),
		LoanApproved:   entry.LoanApproved,
		AccountVersion: entry.AccountVersion,
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(entry.UpdatedAt),
	})

	return mapError(err)
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetEntryByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, mapError(err)
	}

	return rowToEntry(row), nil
}

// UpdateLoanState rewrites the lifecycle columns of a loan entry.
func (r *EntryRepository) UpdateLoanState(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	affected, err := queries.UpdateLoanEntry(ctx, generated.UpdateLoanEntryParams{
		ID:             entry.ID,
		Kind:           string(entry.Kind),
		LoanApproved:   entry.LoanApproved,
		BalanceAfter:   decimalToNumeric(entry.BalanceAfter),
		AccountVersion: entry.AccountVersion,
		UpdatedAt:      timeToPgTimestamptz(entry.UpdatedAt),
		ApprovedAt:     optionalTimestamptz(entry.ApprovedAt),
		PaidAt:         optionalTimestamptz(entry.PaidAt),
	})
	if err != nil {
		return mapError(err)
	}

	if affected == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ListLoansByAccount lists the loan entries of an account in ID order.
func (r *EntryRepository) ListLoansByAccount(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
	return listLoans(ctx, r.queries, accountNumber)
}

// ListLoansByAccountTx lists loan entries as seen by tx.
func (r *EntryRepository) ListLoansByAccountTx(ctx context.Context, tx usecase.Transaction, accountNumber string) ([]*domain.Entry, error) {
	return listLoans(ctx, generated.New(tx.(*Tx).PgxTx()), accountNumber)
}

// GetBalanceAtTime sums the account's balance movements that took effect at
// or before at. Loans count from their approval and payment times.
func (r *EntryRepository) GetBalanceAtTime(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
	if _, err := r.queries.GetAccountByNumber(ctx, accountNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, err
	}

	balance, err := r.queries.GetAccountBalanceAtTime(ctx, generated.GetAccountBalanceAtTimeParams{
		At:            timeToPgTimestamptz(at),
		AccountNumber: accountNumber,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

func listLoans(ctx context.Context, queries *generated.Queries, accountNumber string) ([]*domain.Entry, error) {
	rows, err := queries.ListLoansByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

func rowsToEntries(rows []generated.Entry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:             row.ID,
		AccountNumber:  row.AccountNumber,
		Kind:           domain.EntryKind(row.Kind),
		Amount:         numericToDecimal(row.Amount),
		BalanceAfter:   numericToDecimal(row.BalanceAfter),
		LoanApproved:   row.LoanApproved,
		AccountVersion: row.AccountVersion,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
		ApprovedAt:     timestamptzToOptional(row.ApprovedAt),
		PaidAt:         timestamptzToOptional(row.PaidAt),
	}
}
