package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(truncateDay(r.Start)) && !day.After(truncateDay(r.End))
}

// Bounds returns the half-open time interval [start of Start, start of day after End).
func (r DateRange) Bounds() (time.Time, time.Time) {
	return truncateDay(r.Start), truncateDay(r.End).AddDate(0, 0, 1)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Statement is the read-only report of an account's history.
// Without a range, Total is the account's current balance.
type Statement struct {
	Account *Account
	Range   *DateRange
	Entries []*Entry
	Total   decimal.Decimal
}

// Snapshot is a consistent view of an account and its full entry history.
type Snapshot struct {
	Account *Account
	Entries []*Entry
}

// BuildStatement derives a statement from a snapshot. With a range it keeps
// entries created or taking effect in the range and sums the movements that
// fall inside it, so a loan credit is booked on its approval day.
func BuildStatement(snap *Snapshot, dateRange *DateRange) *Statement {
	stmt := &Statement{
		Account: snap.Account,
		Range:   dateRange,
		Entries: make([]*Entry, 0, len(snap.Entries)),
	}

	if dateRange == nil {
		stmt.Entries = append(stmt.Entries, snap.Entries...)
		stmt.Total = snap.Account.Balance
		return stmt
	}

	total := decimal.Zero
	for _, e := range snap.Entries {
		touched := dateRange.Contains(e.CreatedAt)
		for _, m := range e.Movements() {
			if dateRange.Contains(m.At) {
				touched = true
				total = total.Add(m.Delta)
			}
		}
		if touched {
			stmt.Entries = append(stmt.Entries, e)
		}
	}
	stmt.Total = total

	return stmt
}

// BalanceAt sums every movement of entries that took effect at or before at.
func BalanceAt(entries []*Entry, at time.Time) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		for _, m := range e.Movements() {
			if !m.At.After(at) {
				balance = balance.Add(m.Delta)
			}
		}
	}
	return balance
}

// ReplayBalance folds entries in order over an opening balance using each
// entry's signed amount.
func ReplayBalance(opening decimal.Decimal, entries []*Entry) decimal.Decimal {
	balance := opening
	for _, e := range entries {
		balance = balance.Add(e.SignedAmount())
	}
	return balance
}
