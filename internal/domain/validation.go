package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidHolderName    = errors.New("invalid holder name")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail         = errors.New("invalid email format")
)

// Validation constants
const (
	MaxHolderNameLength = 255
	AccountNumberLength = 10
	MaxAmount           = "1000000000000" // 1 trillion
)

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	accountNumberRegex = regexp.MustCompile(`^[0-9]{10}$`)
	maxAmount          = decimal.RequireFromString(MaxAmount)
)

// ValidateHolderName validates account holder name
func ValidateHolderName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidHolderName)
	}

	if len(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}

	return nil
}

// ValidateAccountNumber checks the number is exactly ten digits.
func ValidateAccountNumber(number string) error {
	if !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: must be %d digits", ErrInvalidAccountNumber, AccountNumberLength)
	}
	return nil
}

// ValidateAmount validates an operation amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateOpeningBalance allows zero but rejects negative or oversized balances.
func ValidateOpeningBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeOpeningFunds
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
