package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
}

// Transfer moves money between two accounts atomically. Both accounts are
// locked in ascending number order regardless of direction.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	transfer := &domain.Transfer{
		FromAccountNumber: input.FromAccountNumber,
		ToAccountNumber:   input.ToAccountNumber,
		Amount:            input.Amount,
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(OpTransfer, input.Amount, err)
	}

	if err := transfer.Validate(); err != nil {
		return nil, uc.reject(OpTransfer, input.Amount, err)
	}

	// DEADLOCK PREVENTION
	numbers := []string{input.FromAccountNumber, input.ToAccountNumber}
	sort.Strings(numbers)

	err := uc.execute(ctx, OpTransfer, input.Amount, func(ctx context.Context, tx Transaction) ([]domain.Notification, error) {
		accounts, err := uc.accountRepo.GetByNumbersForUpdate(ctx, tx, numbers)
		if err != nil {
			return nil, err
		}

		from, to := pickAccounts(accounts, input.FromAccountNumber, input.ToAccountNumber)
		if from == nil || to == nil {
			return nil, domain.ErrAccountNotFound
		}

		if !from.CanCover(input.Amount) {
			return nil, domain.ErrInsufficientFunds
		}

		now := uc.now()

		out, err := uc.appendMovement(ctx, tx, from, domain.EntryKindTransferOut, input.Amount, now)
		if err != nil {
			return nil, err
		}

		in, err := uc.appendMovement(ctx, tx, to, domain.EntryKindTransferIn, input.Amount, now)
		if err != nil {
			return nil, err
		}

		transfer.Out = out
		transfer.In = in
		transfer.CreatedAt = now

		return []domain.Notification{
			domain.NewNotification(from, domain.TemplateTransferSent, input.Amount, now),
			domain.NewNotification(to, domain.TemplateTransferReceived, input.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

func pickAccounts(accounts []*domain.Account, fromNumber, toNumber string) (from, to *domain.Account) {
	for _, a := range accounts {
		switch a.Number {
		case fromNumber:
			from = a
		case toNumber:
			to = a
		}
	}
	return from, to
}
