package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemplateKind selects the message template a notifier renders.
type TemplateKind string

const (
	TemplateDeposit          TemplateKind = "deposit"
	TemplateWithdrawal       TemplateKind = "withdrawal"
	TemplateLoanRequest      TemplateKind = "loan_request"
	TemplateLoanApproved     TemplateKind = "loan_approved"
	TemplateLoanPaid         TemplateKind = "loan_paid"
	TemplateTransferSent     TemplateKind = "transfer_sent"
	TemplateTransferReceived TemplateKind = "transfer_received"
)

var templateSubjects = map[TemplateKind]string{
	TemplateDeposit:          "Deposit Message",
	TemplateWithdrawal:       "Withdrawal Message",
	TemplateLoanRequest:      "Loan Request Message",
	TemplateLoanApproved:     "Loan Approved Message",
	TemplateLoanPaid:         "Pay Loan Message",
	TemplateTransferSent:     "Balance Transfer Message",
	TemplateTransferReceived: "Balance Receive Message",
}

// Subject returns the default subject line for the template.
func (t TemplateKind) Subject() string {
	return templateSubjects[t]
}

// Recipient identifies who a notification is addressed to.
type Recipient struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// Notification is a message queued after a committed ledger operation.
type Notification struct {
	Recipient Recipient
	Subject   string
	Template  TemplateKind
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// NewNotification builds a notification using the template's default subject.
func NewNotification(account *Account, template TemplateKind, amount decimal.Decimal, at time.Time) Notification {
	return Notification{
		Recipient: account.Recipient(),
		Subject:   template.Subject(),
		Template:  template,
		Amount:    amount,
		CreatedAt: at,
	}
}
