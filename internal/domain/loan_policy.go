package domain

// DefaultMaxApprovedLoans is the per-account cap on concurrently approved loans.
const DefaultMaxApprovedLoans = 3

// LoanPolicy decides whether an account may request another loan.
// It holds no state: approvals happen out of band, so callers pass the
// account's current loan entries on every evaluation.
type LoanPolicy struct {
	MaxApproved int
}

// NewLoanPolicy creates a LoanPolicy. Non-positive caps fall back to the default.
func NewLoanPolicy(maxApproved int) LoanPolicy {
	if maxApproved <= 0 {
		maxApproved = DefaultMaxApprovedLoans
	}
	return LoanPolicy{MaxApproved: maxApproved}
}

// ApprovedCount counts entries currently in the approved state.
func (p LoanPolicy) ApprovedCount(entries []*Entry) int {
	count := 0
	for _, e := range entries {
		if state, err := e.LoanState(); err == nil && state == LoanStateApproved {
			count++
		}
	}
	return count
}

// Admit returns ErrLoanLimitExceeded when the account already holds the maximum
// number of approved loans.
func (p LoanPolicy) Admit(entries []*Entry) error {
	if p.ApprovedCount(entries) >= p.MaxApproved {
		return ErrLoanLimitExceeded
	}
	return nil
}
