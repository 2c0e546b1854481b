package banking

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateBankAccount opens an account with its current balance at the
// opening balance.
func (s *Service) CreateBankAccount(ctx context.Context, in CreateAccountInput) (BankAccount, error) {
	if err := in.Validate(); err != nil {
		return BankAccount{}, err
	}
	now := s.now()
	acc := BankAccount{
		ID:              uuid.New(),
		OrganizationID:  in.OrganizationID,
		Name:            in.Name,
		AccountNumber:   in.AccountNumber,
		BankName:        in.BankName,
		Currency:        in.Currency,
		OpeningBalance:  in.OpeningBalance,
		CurrentBalance:  in.OpeningBalance,
		LedgerAccountID: in.LedgerAccountID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertAccount(ctx, acc)
	})
	if err != nil {
		return BankAccount{}, err
	}
	return acc, nil
}

// GetBankAccount loads an account.
func (s *Service) GetBankAccount(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	return s.repo.GetAccount(ctx, id)
}

// CreateBankTransaction records a movement and applies its signed amount to
// the account balance in the same unit of work.
func (s *Service) CreateBankTransaction(ctx context.Context, in CreateTransactionInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}
	var txn Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.IdempotencyKey != "" && s.idem != nil {
			if err := s.idem.CheckAndInsert(ctx, in.IdempotencyKey, IdempotencyModule); err != nil {
				return err
			}
		}
		acc, err := tx.GetAccountForUpdate(ctx, in.BankAccountID)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return ErrBankAccountInactive
		}
		txn = Transaction{
			ID:             uuid.New(),
			OrganizationID: acc.OrganizationID,
			BankAccountID:  acc.ID,
			Date:           shared.DateOnly(in.Date),
			Type:           in.Type,
			Amount:         in.Amount,
			Description:    in.Description,
			Reference:      in.Reference,
			CreatedAt:      s.now(),
		}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		_, err = tx.AdjustBalance(ctx, acc.ID, in.Type.Signed(in.Amount), txn.CreatedAt)
		return err
	})
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// DeleteBankTransaction removes an unreconciled movement and reverses its
// effect on the balance.
func (s *Service) DeleteBankTransaction(ctx context.Context, id uuid.UUID) error {
	peek, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Account first, then transaction: the order CreateBankTransaction locks in.
		if _, err := tx.GetAccountForUpdate(ctx, peek.BankAccountID); err != nil {
			return err
		}
		txn, err := tx.GetTransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if txn.IsReconciled {
			return ErrTransactionReconciled
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		balance, err := tx.AdjustBalance(ctx, txn.BankAccountID, txn.Type.Signed(txn.Amount).Neg(), s.now())
		if err != nil {
			return err
		}
		s.logger.Debug("bank transaction deleted",
			slog.String("transaction_id", id.String()),
			slog.String("balance", balance.StringFixed(2)))
		return nil
	})
}

// ListBankTransactions lists the movements of an account by date.
func (s *Service) ListBankTransactions(ctx context.Context, accountID uuid.UUID) ([]Transaction, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, accountID)
}
