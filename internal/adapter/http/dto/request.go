package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// DateLayout is the calendar date format used by statement ranges.
const DateLayout = "2006-01-02"

// ErrIncompleteDateRange is returned when only one bound of a range is given.
var ErrIncompleteDateRange = errors.New("start_date and end_date must be given together")

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	HolderName     string          `json:"holder_name"`
	Email          string          `json:"email"`
	AccountNumber  string          `json:"account_number,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		HolderName:     r.HolderName,
		Email:          r.Email,
		AccountNumber:  r.AccountNumber,
		OpeningBalance: r.OpeningBalance,
	}
}

// AmountRequest carries the amount of a deposit, withdrawal or loan request.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToMovementInput converts to use case input for accountNumber.
func (r *AmountRequest) ToMovementInput(accountNumber string) usecase.MovementInput {
	return usecase.MovementInput{
		AccountNumber: accountNumber,
		Amount:        r.Amount,
	}
}

// TransferRequest represents a transfer out of the account in the path.
type TransferRequest struct {
	ToAccountNumber string          `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(fromAccountNumber string) usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountNumber: fromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            r.Amount,
	}
}

// BankruptcyRequest sets or clears the institution bankruptcy flag.
type BankruptcyRequest struct {
	Bankrupt bool `json:"bankrupt"`
}

// ParseDateRange parses optional YYYY-MM-DD bounds. Both empty means no range.
func ParseDateRange(start, end string) (*domain.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, ErrIncompleteDateRange
	}

	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, err
	}

	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, err
	}

	return &domain.DateRange{Start: s, End: e}, nil
}
