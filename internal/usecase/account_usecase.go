package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountUseCase handles account opening and lookup.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	numberGen   IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase. numberGen produces account numbers.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	numberGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		numberGen:   numberGen,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	HolderName     string
	Email          string
	AccountNumber  string
	OpeningBalance decimal.Decimal
}

// OpenAccount creates an account. A positive opening balance is recorded as
// the account's first deposit entry so the log always replays to the balance.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	input.HolderName = strings.TrimSpace(input.HolderName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateHolderName(input.HolderName); err != nil {
		return nil, err
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidateOpeningBalance(input.OpeningBalance); err != nil {
		return nil, err
	}

	if input.AccountNumber != "" {
		if err := domain.ValidateAccountNumber(input.AccountNumber); err != nil {
			return nil, err
		}
		return uc.create(ctx, input, input.AccountNumber)
	}

	var lastErr error
	for range maxAccountNumberAttempts {
		account, err := uc.create(ctx, input, uc.numberGen.Generate())
		if !errors.Is(err, domain.ErrAccountExists) {
			return account, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (uc *AccountUseCase) create(ctx context.Context, input OpenAccountInput, number string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.Infrastructure(err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	account := &domain.Account{
		Number:     number,
		HolderName: input.HolderName,
		Email:      input.Email,
		Balance:    input.OpeningBalance,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.OpeningBalance.IsPositive() {
		account.Version = 1
	}

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, domain.Infrastructure(err)
	}

	if input.OpeningBalance.IsPositive() {
		entry := &domain.Entry{
			ID:             uc.idGen.Generate(),
			AccountNumber:  number,
			Kind:           domain.EntryKindDeposit,
			Amount:         input.OpeningBalance,
			BalanceAfter:   input.OpeningBalance,
			AccountVersion: account.Version,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, domain.Infrastructure(err)
		}
	}

	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return nil, domain.Infrastructure(err)
	}

	return account, nil
}

// GetAccount retrieves an account by number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, number)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
