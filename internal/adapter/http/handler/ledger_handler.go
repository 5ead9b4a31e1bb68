package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// LedgerService defines the ledger mutations exposed over HTTP.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.MovementInput) (*domain.Entry, error)
	Withdraw(ctx context.Context, input usecase.MovementInput) (*domain.Entry, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transfer, error)
	RequestLoan(ctx context.Context, input usecase.MovementInput) (*domain.Entry, error)
	ApproveLoan(ctx context.Context, entryID string) (*domain.Entry, error)
	PayLoan(ctx context.Context, entryID string) (*usecase.PayLoanResult, error)
}

// LedgerHandler handles money movements and loans.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

type movementFunc func(ctx context.Context, input usecase.MovementInput) (*domain.Entry, error)

// Deposit credits the account in the path.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, "deposit failed", h.ledgerUC.Deposit)
}

// Withdraw debits the account in the path.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, "withdrawal failed", h.ledgerUC.Withdraw)
}

// RequestLoan records a loan request for the account in the path.
func (h *LedgerHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, "loan request failed", h.ledgerUC.RequestLoan)
}

func (h *LedgerHandler) movement(w http.ResponseWriter, r *http.Request, message string, fn movementFunc) {
	var req dto.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := fn(r.Context(), req.ToMovementInput(chi.URLParam(r, "number")))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Transfer moves money out of the account in the path.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "number")))
	if err != nil {
		writeDomainError(w, "transfer failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// ApproveLoan disburses a requested loan.
func (h *LedgerHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	entry, err := h.ledgerUC.ApproveLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "loan approval failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// PayLoan repays an approved loan. A loan still awaiting approval is left
// untouched and reported with paid=false.
func (h *LedgerHandler) PayLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	result, err := h.ledgerUC.PayLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "loan payment failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PayLoanFromResult(result))
}
