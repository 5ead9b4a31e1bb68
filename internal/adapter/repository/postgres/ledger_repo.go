package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository and usecase.SnapshotReader.
type LedgerRepository struct {
	pool Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency sums all balances and all signed entry amounts. Both sums
// come from one statement, so they share a snapshot.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	q := generated.New(r.pool)
	result, err := q.CheckLedgerConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalBalance), numericToDecimal(result.TotalNet), nil
}

// Snapshot reads an account and its entries inside a read-only REPEATABLE
// READ transaction, so the history matches the balance it is read with.
func (r *LedgerRepository) Snapshot(ctx context.Context, accountNumber string) (*domain.Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := generated.New(tx)

	row, err := q.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	rows, err := q.ListEntriesByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Account: rowToAccount(row),
		Entries: rowsToEntries(rows),
	}, nil
}

// Ping checks database connectivity.
func (r *LedgerRepository) Ping(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "SELECT 1")
	return err
}
