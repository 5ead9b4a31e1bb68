package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tags what a ledger entry records.
type EntryKind string

const (
	EntryKindDeposit       EntryKind = "deposit"
	EntryKindWithdrawal    EntryKind = "withdrawal"
	EntryKindLoanRequested EntryKind = "loan_requested"
	EntryKindLoanApproved  EntryKind = "loan_approved"
	EntryKindLoanPaid      EntryKind = "loan_paid"
	EntryKindTransferOut   EntryKind = "transfer_out"
	EntryKindTransferIn    EntryKind = "transfer_in"
)

var validEntryKinds = map[EntryKind]bool{
	EntryKindDeposit:       true,
	EntryKindWithdrawal:    true,
	EntryKindLoanRequested: true,
	EntryKindLoanApproved:  true,
	EntryKindLoanPaid:      true,
	EntryKindTransferOut:   true,
	EntryKindTransferIn:    true,
}

// IsValid checks if the kind is known.
func (k EntryKind) IsValid() bool {
	return validEntryKinds[k]
}

// IsLoan reports whether the kind belongs to the loan lifecycle.
func (k EntryKind) IsLoan() bool {
	return k == EntryKindLoanRequested || k == EntryKindLoanApproved || k == EntryKindLoanPaid
}

// NetEffect returns the balance change an entry of this kind applies when it
// is appended. Loan credits and debits happen later, on approval and payment,
// and are read from the entry's transition times instead.
func (k EntryKind) NetEffect(amount decimal.Decimal) decimal.Decimal {
	switch k {
	case EntryKindDeposit, EntryKindTransferIn:
		return amount
	case EntryKindWithdrawal, EntryKindTransferOut:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// Entry is one record in the transaction log. Amount is always a positive
// magnitude; Kind determines its sign.
type Entry struct {
	ID             string
	AccountNumber  string
	Kind           EntryKind
	Amount         decimal.Decimal
	BalanceAfter   decimal.Decimal
	LoanApproved   bool
	AccountVersion int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Set by ApproveLoan and PayLoan. A loan approved outside ApproveLoan was
	// never credited and has no ApprovedAt.
	ApprovedAt *time.Time
	PaidAt     *time.Time
}

// Movement is one balance change with the time it took effect.
type Movement struct {
	At    time.Time
	Delta decimal.Decimal
}

// Movements lists the balance changes this entry caused. A loan contributes a
// credit at approval and a debit at payment; every other kind contributes its
// net effect at creation.
func (e *Entry) Movements() []Movement {
	if !e.Kind.IsLoan() {
		return []Movement{{At: e.CreatedAt, Delta: e.Kind.NetEffect(e.Amount)}}
	}

	var moves []Movement
	if e.ApprovedAt != nil {
		moves = append(moves, Movement{At: *e.ApprovedAt, Delta: e.Amount})
	}
	if e.PaidAt != nil {
		moves = append(moves, Movement{At: *e.PaidAt, Delta: e.Amount.Neg()})
	}
	return moves
}

// SignedAmount returns the net balance change the entry has caused so far.
func (e *Entry) SignedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range e.Movements() {
		total = total.Add(m.Delta)
	}
	return total
}
