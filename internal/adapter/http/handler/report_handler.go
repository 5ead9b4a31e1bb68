package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// ReportService defines the read-only views exposed over HTTP.
type ReportService interface {
	Statement(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error)
	ListLoans(ctx context.Context, accountNumber string) ([]*domain.Entry, error)
	BalanceAt(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error)
	ReconcileAccount(ctx context.Context, accountNumber string) (*usecase.ReconciliationResult, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// ReportHandler handles statements, loan lists and consistency checks.
type ReportHandler struct {
	reportUC ReportService
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, now: time.Now}
}

// Statement returns the account's entries and their aggregate.
func (h *ReportHandler) Statement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateRange, err := dto.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	stmt, err := h.reportUC.Statement(r.Context(), usecase.StatementInput{
		AccountNumber: chi.URLParam(r, "number"),
		Range:         dateRange,
	})
	if err != nil {
		writeDomainError(w, "failed to build statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(stmt))
}

// ListLoans returns every loan entry of the account.
func (h *ReportHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.reportUC.ListLoans(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, "failed to list loans", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(loans))
}

// BalanceHistory returns the balance as of the "at" query parameter, or now.
func (h *ReportHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at parameter", err.Error())
			return
		}
		at = parsed
	}

	number := chi.URLParam(r, "number")
	balance, err := h.reportUC.BalanceAt(r.Context(), number, at)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceAtResponse{
		AccountNumber: number,
		At:            at,
		Balance:       balance,
	})
}

// Reconcile replays the account's log against its recorded balance.
func (h *ReportHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportUC.ReconcileAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// CheckConsistency compares total balances with the total of the log.
func (h *ReportHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportUC.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, usecase.ErrInconsistentLedger) {
		writeDomainError(w, "consistency check failed", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromReport(report))
}
