package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer account holding a balance in a single currency unit.
type Account struct {
	Number     string
	HolderName string
	Email      string
	Balance    decimal.Decimal
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanCover reports whether debiting amount leaves a strictly positive remainder.
// Transfers and loan repayments both use this strict boundary.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThan(amount)
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// Recipient returns the notification identity of the account holder.
func (a *Account) Recipient() Recipient {
	return Recipient{
		AccountNumber: a.Number,
		Name:          a.HolderName,
		Email:         a.Email,
	}
}
