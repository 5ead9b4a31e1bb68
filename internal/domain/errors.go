package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAmount = errors.New("amount must be positive")

	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = errors.New("account number already in use")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInstitutionBankrupt  = errors.New("institution is bankrupt: withdrawals are blocked")
	ErrSelfTransfer         = errors.New("cannot transfer to same account")
	ErrNegativeOpeningFunds = errors.New("opening balance cannot be negative")

	// Loan errors
	ErrEntryNotFound     = errors.New("loan entry not found")
	ErrNotALoan          = fmt.Errorf("%w: entry is not a loan", ErrEntryNotFound)
	ErrLoanLimitExceeded = errors.New("approved loan limit reached")
	ErrLoanNotApproved   = errors.New("loan is not approved")
	ErrLoanNotPending    = errors.New("loan is not awaiting approval")
	ErrLoanAlreadyPaid   = errors.New("loan already paid")

	// Infrastructure errors
	ErrInfrastructure = errors.New("infrastructure failure")
	ErrLockTimeout    = fmt.Errorf("%w: timed out acquiring account lock", ErrInfrastructure)
)

var businessErrors = []error{
	ErrInvalidAmount,
	ErrAccountNotFound,
	ErrAccountExists,
	ErrInsufficientFunds,
	ErrInstitutionBankrupt,
	ErrSelfTransfer,
	ErrNegativeOpeningFunds,
	ErrEntryNotFound,
	ErrLoanLimitExceeded,
	ErrLoanNotApproved,
	ErrLoanNotPending,
	ErrLoanAlreadyPaid,
	ErrInvalidAccountNumber,
	ErrInvalidHolderName,
	ErrInvalidEmail,
	ErrAmountTooLarge,
}

// IsBusinessError reports whether err is a business rule rejection.
// Business rejections leave state unchanged and must not be retried.
func IsBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Infrastructure wraps err as an infrastructure failure, keeping the cause.
func Infrastructure(err error) error {
	if err == nil || errors.Is(err, ErrInfrastructure) || IsBusinessError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInfrastructure, err)
}
