package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestLedgerUseCase_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.TransferInput
		fromBalance int64
		expectError error
	}{
		{
			name: "successful transfer",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1000000002",
				Amount:            decimal.NewFromInt(100),
			},
			fromBalance: 500,
		},
		{
			name: "reject self transfer regardless of balance",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1000000001",
				Amount:            decimal.NewFromInt(1),
			},
			fromBalance: 1000000,
			expectError: domain.ErrSelfTransfer,
		},
		{
			name: "reject amount equal to balance",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1000000002",
				Amount:            decimal.NewFromInt(500),
			},
			fromBalance: 500,
			expectError: domain.ErrInsufficientFunds,
		},
		{
			name: "reject amount above balance",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1000000002",
				Amount:            decimal.NewFromInt(501),
			},
			fromBalance: 500,
			expectError: domain.ErrInsufficientFunds,
		},
		{
			name: "reject unknown destination",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1999999999",
				Amount:            decimal.NewFromInt(10),
			},
			fromBalance: 500,
			expectError: domain.ErrAccountNotFound,
		},
		{
			name: "reject zero amount",
			input: usecase.TransferInput{
				FromAccountNumber: "1000000001",
				ToAccountNumber:   "1000000002",
				Amount:            decimal.Zero,
			},
			fromBalance: 500,
			expectError: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngine(nil, []*domain.Account{
				newAccount("1000000001", tt.fromBalance),
				newAccount("1000000002", 0),
			})

			transfer, err := f.uc.Transfer(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errorsIs(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				if !f.accounts.Balance("1000000001").Equal(decimal.NewFromInt(tt.fromBalance)) {
					t.Errorf("source balance changed on failure: %s", f.accounts.Balance("1000000001"))
				}
				if !f.accounts.Balance("1000000002").IsZero() {
					t.Errorf("destination balance changed on failure: %s", f.accounts.Balance("1000000002"))
				}
				if f.entries.Len() != 0 || f.queue.Len() != 0 {
					t.Errorf("expected no entries or notifications, got %d/%d", f.entries.Len(), f.queue.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantFrom := decimal.NewFromInt(tt.fromBalance).Sub(tt.input.Amount)
			if !f.accounts.Balance("1000000001").Equal(wantFrom) {
				t.Errorf("expected source balance %s, got %s", wantFrom, f.accounts.Balance("1000000001"))
			}
			if !f.accounts.Balance("1000000002").Equal(tt.input.Amount) {
				t.Errorf("expected destination balance %s, got %s", tt.input.Amount, f.accounts.Balance("1000000002"))
			}

			if transfer.Out.Kind != domain.EntryKindTransferOut || transfer.In.Kind != domain.EntryKindTransferIn {
				t.Errorf("unexpected leg kinds %s/%s", transfer.Out.Kind, transfer.In.Kind)
			}
			if !transfer.Out.Amount.Equal(transfer.In.Amount) || !transfer.Out.CreatedAt.Equal(transfer.In.CreatedAt) {
				t.Errorf("legs must match in amount and timestamp: %+v / %+v", transfer.Out, transfer.In)
			}
			if !transfer.Out.BalanceAfter.Equal(wantFrom) || !transfer.In.BalanceAfter.Equal(tt.input.Amount) {
				t.Errorf("unexpected balance snapshots %s/%s", transfer.Out.BalanceAfter, transfer.In.BalanceAfter)
			}
			if f.entries.Len() != 2 {
				t.Errorf("expected 2 entries, got %d", f.entries.Len())
			}
			if f.queue.Len() != 2 {
				t.Fatalf("expected 2 notifications, got %d", f.queue.Len())
			}
			if f.queue.Notifications[0].Template != domain.TemplateTransferSent ||
				f.queue.Notifications[1].Template != domain.TemplateTransferReceived {
				t.Errorf("unexpected templates %s/%s", f.queue.Notifications[0].Template, f.queue.Notifications[1].Template)
			}
		})
	}
}

func TestLedgerUseCase_TransferLocksInAscendingOrder(t *testing.T) {
	f := newEngine(nil, []*domain.Account{
		newAccount("1000000001", 100),
		newAccount("1000000002", 100),
	})

	_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountNumber: "1000000002",
		ToAccountNumber:   "1000000001",
		Amount:            decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.accounts.LockOrder) != 1 {
		t.Fatalf("expected one lock call, got %d", len(f.accounts.LockOrder))
	}
	got := f.accounts.LockOrder[0]
	if got[0] != "1000000001" || got[1] != "1000000002" {
		t.Errorf("expected ascending lock order, got %v", got)
	}
}
