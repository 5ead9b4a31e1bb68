package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanState is the lifecycle state of a loan entry.
type LoanState string

const (
	LoanStateRequested LoanState = "requested"
	LoanStateApproved  LoanState = "approved"
	LoanStatePaid      LoanState = "paid"
)

// loanTransitions lists the only legal forward moves. Paid is terminal.
var loanTransitions = map[LoanState]LoanState{
	LoanStateRequested: LoanStateApproved,
	LoanStateApproved:  LoanStatePaid,
}

var loanStateKinds = map[LoanState]EntryKind{
	LoanStateRequested: EntryKindLoanRequested,
	LoanStateApproved:  EntryKindLoanApproved,
	LoanStatePaid:      EntryKindLoanPaid,
}

// NewLoanRequest builds the entry appended by a loan request. The balance is
// not touched until the loan is approved.
func NewLoanRequest(id string, account *Account, amount decimal.Decimal, at time.Time) *Entry {
	return &Entry{
		ID:             id,
		AccountNumber:  account.Number,
		Kind:           EntryKindLoanRequested,
		Amount:         amount,
		BalanceAfter:   account.Balance,
		AccountVersion: account.Version,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

// LoanState derives the loan state from kind and approval flag. A requested
// entry whose flag was set by an external approval counts as approved.
func (e *Entry) LoanState() (LoanState, error) {
	switch e.Kind {
	case EntryKindLoanRequested:
		if e.LoanApproved {
			return LoanStateApproved, nil
		}
		return LoanStateRequested, nil
	case EntryKindLoanApproved:
		return LoanStateApproved, nil
	case EntryKindLoanPaid:
		return LoanStatePaid, nil
	default:
		return "", ErrNotALoan
	}
}

// IsPayable reports whether PayLoan may debit this entry.
func (e *Entry) IsPayable() bool {
	state, err := e.LoanState()
	return err == nil && state == LoanStateApproved
}

// Approve moves a requested loan to approved, recording the balance after disbursement.
func (e *Entry) Approve(balanceAfter decimal.Decimal, version int64, at time.Time) error {
	state, err := e.LoanState()
	if err != nil {
		return err
	}

	if state != LoanStateRequested {
		return ErrLoanNotPending
	}

	return e.transition(state, balanceAfter, version, at)
}

// MarkPaid moves an approved loan to paid, recording the balance after repayment.
func (e *Entry) MarkPaid(balanceAfter decimal.Decimal, version int64, at time.Time) error {
	state, err := e.LoanState()
	if err != nil {
		return err
	}

	switch state {
	case LoanStateRequested:
		return ErrLoanNotApproved
	case LoanStatePaid:
		return ErrLoanAlreadyPaid
	}

	return e.transition(state, balanceAfter, version, at)
}

func (e *Entry) transition(from LoanState, balanceAfter decimal.Decimal, version int64, at time.Time) error {
	to, ok := loanTransitions[from]
	if !ok {
		return ErrLoanAlreadyPaid
	}

	e.Kind = loanStateKinds[to]
	e.LoanApproved = true
	switch to {
	case LoanStateApproved:
		e.ApprovedAt = &at
	case LoanStatePaid:
		e.PaidAt = &at
	}
	e.BalanceAfter = balanceAfter
	e.AccountVersion = version
	e.UpdatedAt = at

	return nil
}
