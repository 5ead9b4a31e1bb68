package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the committed result of moving money between two accounts:
// one transfer-out entry on the source and one transfer-in entry on the destination.
type Transfer struct {
	CreatedAt         time.Time
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Out               *Entry
	In                *Entry
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.FromAccountNumber == t.ToAccountNumber {
		return ErrSelfTransfer
	}

	return nil
}
