package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountNumber string          `json:"account_number"`
	HolderName    string          `json:"holder_name"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountNumber: a.Number,
		HolderName:    a.HolderName,
		Email:         a.Email,
		Balance:       a.Balance,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents a transaction log entry in API responses.
type EntryResponse struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	LoanApproved  bool            `json:"loan_approved"`
	LoanState     string          `json:"loan_state,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:            e.ID,
		AccountNumber: e.AccountNumber,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		BalanceAfter:  e.BalanceAfter,
		LoanApproved:  e.LoanApproved,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		ApprovedAt:    e.ApprovedAt,
		PaidAt:        e.PaidAt,
	}

	if state, err := e.LoanState(); err == nil {
		resp.LoanState = string(state)
	}

	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransferResponse represents a committed transfer and both of its entries.
type TransferResponse struct {
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
	Out               *EntryResponse  `json:"out"`
	In                *EntryResponse  `json:"in"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	resp := &TransferResponse{
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		CreatedAt:         t.CreatedAt,
	}
	if t.Out != nil {
		resp.Out = EntryFromDomain(t.Out)
	}
	if t.In != nil {
		resp.In = EntryFromDomain(t.In)
	}
	return resp
}

// PayLoanResponse reports whether a repayment happened.
type PayLoanResponse struct {
	Paid bool           `json:"paid"`
	Loan *EntryResponse `json:"loan"`
}

// PayLoanFromResult converts a use case result to response.
func PayLoanFromResult(r *usecase.PayLoanResult) *PayLoanResponse {
	return &PayLoanResponse{
		Paid: r.Paid,
		Loan: EntryFromDomain(r.Entry),
	}
}

// StatementResponse represents an account statement.
type StatementResponse struct {
	Account   *AccountResponse `json:"account"`
	StartDate string           `json:"start_date,omitempty"`
	EndDate   string           `json:"end_date,omitempty"`
	Entries   []*EntryResponse `json:"entries"`
	Total     decimal.Decimal  `json:"total"`
}

// StatementFromDomain converts domain statement to response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	resp := &StatementResponse{
		Account: AccountFromDomain(s.Account),
		Entries: EntriesFromDomain(s.Entries),
		Total:   s.Total,
	}
	if s.Range != nil {
		resp.StartDate = s.Range.Start.Format(DateLayout)
		resp.EndDate = s.Range.End.Format(DateLayout)
	}
	return resp
}

// BalanceAtResponse represents a historical balance.
type BalanceAtResponse struct {
	AccountNumber string          `json:"account_number"`
	At            time.Time       `json:"at"`
	Balance       decimal.Decimal `json:"balance"`
}

// ConsistencyResponse represents the ledger-wide balance check.
type ConsistencyResponse struct {
	Consistent   bool            `json:"consistent"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalEntries decimal.Decimal `json:"total_entries"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:   r.Consistent,
		TotalBalance: r.TotalBalance,
		TotalEntries: r.TotalEntries,
		CheckedAt:    r.CheckedAt,
	}
}

// ReconciliationResponse represents one account's replay check.
type ReconciliationResponse struct {
	AccountNumber     string          `json:"account_number"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountNumber:     r.AccountNumber,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// BankruptcyResponse reports the institution bankruptcy flag.
type BankruptcyResponse struct {
	Bankrupt bool `json:"bankrupt"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
