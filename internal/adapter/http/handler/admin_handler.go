package handler

import (
	"context"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
)

// BankruptcyService reads and sets the institution bankruptcy flag.
type BankruptcyService interface {
	IsInstitutionBankrupt(ctx context.Context) (bool, error)
	SetInstitutionBankrupt(ctx context.Context, bankrupt bool) error
}

// AdminHandler handles institution-level administration.
type AdminHandler struct {
	flag BankruptcyService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(flag BankruptcyService) *AdminHandler {
	return &AdminHandler{flag: flag}
}

// GetBankruptcy reports the bankruptcy flag.
func (h *AdminHandler) GetBankruptcy(w http.ResponseWriter, r *http.Request) {
	bankrupt, err := h.flag.IsInstitutionBankrupt(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to read bankruptcy flag", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankruptcyResponse{Bankrupt: bankrupt})
}

// SetBankruptcy sets or clears the bankruptcy flag.
func (h *AdminHandler) SetBankruptcy(w http.ResponseWriter, r *http.Request) {
	var req dto.BankruptcyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.flag.SetInstitutionBankrupt(r.Context(), req.Bankrupt); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to set bankruptcy flag", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankruptcyResponse{Bankrupt: req.Bankrupt})
}
