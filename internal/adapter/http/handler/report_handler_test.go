package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type reportServiceStub struct {
	statementFn   func(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error)
	listLoansFn   func(ctx context.Context, accountNumber string) ([]*domain.Entry, error)
	balanceAtFn   func(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error)
	reconcileFn   func(ctx context.Context, accountNumber string) (*usecase.ReconciliationResult, error)
	consistencyFn func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *reportServiceStub) Statement(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error) {
	return s.statementFn(ctx, input)
}

func (s *reportServiceStub) ListLoans(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
	return s.listLoansFn(ctx, accountNumber)
}

func (s *reportServiceStub) BalanceAt(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
	return s.balanceAtFn(ctx, accountNumber, at)
}

func (s *reportServiceStub) ReconcileAccount(ctx context.Context, accountNumber string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, accountNumber)
}

func (s *reportServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}

func getRequest(path string, params map[string]string) *http.Request {
	return withURLParams(httptest.NewRequest(http.MethodGet, path, nil), params)
}

func TestReportHandler_StatementWithRange(t *testing.T) {
	var captured usecase.StatementInput
	h := NewReportHandler(&reportServiceStub{
		statementFn: func(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error) {
			captured = input
			return &domain.Statement{
				Account: &domain.Account{Number: input.AccountNumber},
				Range:   input.Range,
				Entries: []*domain.Entry{{ID: "e1", Kind: domain.EntryKindDeposit, Amount: decimal.NewFromInt(10)}},
				Total:   decimal.NewFromInt(10),
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Statement(rec, getRequest("/accounts/1000000001/statement?start_date=2024-01-01&end_date=2024-01-31",
		map[string]string{"number": "1000000001"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, captured.Range)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), captured.Range.End)

	var resp dto.StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Len(t, resp.Entries, 1)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(10)))
}

func TestReportHandler_StatementBadRange(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{})

	rec := httptest.NewRecorder()
	h.Statement(rec, getRequest("/accounts/1000000001/statement?start_date=2024-01-01",
		map[string]string{"number": "1000000001"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_StatementReversedRange(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{
		statementFn: func(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error) {
			return nil, usecase.ErrInvalidDateRange
		},
	})

	rec := httptest.NewRecorder()
	h.Statement(rec, getRequest("/accounts/1000000001/statement?start_date=2024-02-01&end_date=2024-01-01",
		map[string]string{"number": "1000000001"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_ListLoans(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{
		listLoansFn: func(ctx context.Context, accountNumber string) ([]*domain.Entry, error) {
			return []*domain.Entry{
				{ID: "l1", Kind: domain.EntryKindLoanRequested},
				{ID: "l2", Kind: domain.EntryKindLoanPaid, LoanApproved: true},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListLoans(rec, getRequest("/accounts/1000000001/loans", map[string]string{"number": "1000000001"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "requested", resp[0].LoanState)
	assert.Equal(t, "paid", resp[1].LoanState)
}

func TestReportHandler_BalanceHistory(t *testing.T) {
	var capturedAt time.Time
	h := NewReportHandler(&reportServiceStub{
		balanceAtFn: func(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
			capturedAt = at
			return decimal.NewFromInt(75), nil
		},
	})

	rec := httptest.NewRecorder()
	h.BalanceHistory(rec, getRequest("/accounts/1000000001/balance/history?at=2024-03-01T12:00:00Z",
		map[string]string{"number": "1000000001"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), capturedAt.UTC())

	var resp dto.BalanceAtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(75)))
}

func TestReportHandler_BalanceHistoryDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)
	var capturedAt time.Time
	h := NewReportHandler(&reportServiceStub{
		balanceAtFn: func(ctx context.Context, accountNumber string, at time.Time) (decimal.Decimal, error) {
			capturedAt = at
			return decimal.Zero, nil
		},
	})
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.BalanceHistory(rec, getRequest("/accounts/1000000001/balance/history", map[string]string{"number": "1000000001"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now, capturedAt)
}

func TestReportHandler_BalanceHistoryBadTime(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{})

	rec := httptest.NewRecorder()
	h.BalanceHistory(rec, getRequest("/accounts/1000000001/balance/history?at=yesterday",
		map[string]string{"number": "1000000001"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_Reconcile(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{
		reconcileFn: func(ctx context.Context, accountNumber string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{
				AccountNumber:     accountNumber,
				RecordedBalance:   decimal.NewFromInt(10),
				CalculatedBalance: decimal.NewFromInt(10),
				IsReconciled:      true,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Reconcile(rec, getRequest("/accounts/1000000001/reconciliation", map[string]string{"number": "1000000001"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsReconciled)
	assert.Equal(t, "1000000001", resp.AccountNumber)
}

func TestReportHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name     string
		report   *usecase.ConsistencyReport
		err      error
		wantCode int
	}{
		{
			name:     "consistent",
			report:   &usecase.ConsistencyReport{TotalBalance: decimal.NewFromInt(5), TotalEntries: decimal.NewFromInt(5), Consistent: true},
			wantCode: http.StatusOK,
		},
		{
			name:     "inconsistent",
			report:   &usecase.ConsistencyReport{TotalBalance: decimal.NewFromInt(5), TotalEntries: decimal.NewFromInt(4)},
			err:      fmt.Errorf("%w: off by 1", usecase.ErrInconsistentLedger),
			wantCode: http.StatusConflict,
		},
		{
			name:     "storage down",
			err:      domain.Infrastructure(fmt.Errorf("connection refused")),
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&reportServiceStub{
				consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
					return tt.report, tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.CheckConsistency(rec, getRequest("/ledger/consistency", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
