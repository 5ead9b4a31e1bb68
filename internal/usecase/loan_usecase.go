package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// PayLoanResult describes the outcome of a repayment attempt. Paid is false
// when the loan was still awaiting approval and nothing changed.
type PayLoanResult struct {
	Entry *domain.Entry
	Paid  bool
}

// RequestLoan appends a loan request unless the account already holds the
// maximum number of approved loans. The balance is not touched.
func (uc *LedgerUseCase) RequestLoan(ctx context.Context, input MovementInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(OpRequestLoan, input.Amount, err)
	}

	var entry *domain.Entry
	err := uc.execute(ctx, OpRequestLoan, input.Amount, func(ctx context.Context, tx Transaction) ([]domain.Notification, error) {
		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.AccountNumber)
		if err != nil {
			return nil, err
		}

		loans, err := uc.entryRepo.ListLoansByAccountTx(ctx, tx, account.Number)
		if err != nil {
			return nil, err
		}

		if err := uc.policy.Admit(loans); err != nil {
			return nil, err
		}

		now := uc.now()
		entry = domain.NewLoanRequest(uc.idGen.Generate(), account, input.Amount, now)

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}

		return []domain.Notification{
			domain.NewNotification(account, domain.TemplateLoanRequest, input.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ApproveLoan moves a requested loan to approved and disburses it to the account.
// The approved-loan cap applies here as well as at request time.
func (uc *LedgerUseCase) ApproveLoan(ctx context.Context, entryID string) (*domain.Entry, error) {
	var loan *domain.Entry

	err := uc.withLoan(ctx, OpApproveLoan, entryID, func(ctx context.Context, tx Transaction, account *domain.Account, l *domain.Entry) ([]domain.Notification, error) {
		loans, err := uc.entryRepo.ListLoansByAccountTx(ctx, tx, account.Number)
		if err != nil {
			return nil, err
		}

		state, err := l.LoanState()
		if err != nil {
			return nil, err
		}

		if state != domain.LoanStateRequested {
			return nil, domain.ErrLoanNotPending
		}

		if err := uc.policy.Admit(loans); err != nil {
			return nil, err
		}

		now := uc.now()
		newBalance := account.ApplyCredit(l.Amount)

		if err := l.Approve(newBalance, account.Version+1, now); err != nil {
			return nil, err
		}

		if err := uc.entryRepo.UpdateLoanState(ctx, tx, l); err != nil {
			return nil, err
		}

		if err := uc.setBalance(ctx, tx, account, newBalance, now); err != nil {
			return nil, err
		}

		loan = l

		return []domain.Notification{
			domain.NewNotification(account, domain.TemplateLoanApproved, l.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// PayLoan repays an approved loan. Repaying a loan still awaiting approval is
// a no-op; repaying a paid loan fails with ErrLoanAlreadyPaid. The repayment
// must leave a strictly positive balance.
func (uc *LedgerUseCase) PayLoan(ctx context.Context, entryID string) (*PayLoanResult, error) {
	var result *PayLoanResult

	err := uc.withLoan(ctx, OpPayLoan, entryID, func(ctx context.Context, tx Transaction, account *domain.Account, loan *domain.Entry) ([]domain.Notification, error) {
		state, err := loan.LoanState()
		if err != nil {
			return nil, err
		}

		switch state {
		case domain.LoanStateRequested:
			result = &PayLoanResult{Entry: loan, Paid: false}
			return nil, nil
		case domain.LoanStatePaid:
			return nil, domain.ErrLoanAlreadyPaid
		}

		if !account.CanCover(loan.Amount) {
			return nil, domain.ErrInsufficientFunds
		}

		now := uc.now()
		newBalance := account.ApplyDebit(loan.Amount)

		if err := loan.MarkPaid(newBalance, account.Version+1, now); err != nil {
			return nil, err
		}

		if err := uc.entryRepo.UpdateLoanState(ctx, tx, loan); err != nil {
			return nil, err
		}

		if err := uc.setBalance(ctx, tx, account, newBalance, now); err != nil {
			return nil, err
		}

		result = &PayLoanResult{Entry: loan, Paid: true}

		return []domain.Notification{
			domain.NewNotification(account, domain.TemplateLoanPaid, loan.Amount, now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

type loanWork func(ctx context.Context, tx Transaction, account *domain.Account, loan *domain.Entry) ([]domain.Notification, error)

// withLoan resolves the owning account of a loan entry, locks that account and
// re-reads the entry under the lock before running work.
func (uc *LedgerUseCase) withLoan(ctx context.Context, op, entryID string, work loanWork) error {
	found, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return uc.reject(op, decimal.Zero, err)
		}
		return uc.reject(op, decimal.Zero, domain.Infrastructure(err))
	}

	if !found.Kind.IsLoan() {
		return uc.reject(op, found.Amount, domain.ErrNotALoan)
	}

	return uc.execute(ctx, op, found.Amount, func(ctx context.Context, tx Transaction) ([]domain.Notification, error) {
		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, found.AccountNumber)
		if err != nil {
			return nil, err
		}

		loan, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return nil, err
		}

		return work(ctx, tx, account, loan)
	})
}
