package banking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateCheque registers a pending cheque. Nothing touches the balance until
// it is deposited or cleared.
func (s *Service) CreateCheque(ctx context.Context, in CreateChequeInput) (Cheque, error) {
	if err := in.Validate(); err != nil {
		return Cheque{}, err
	}
	var c Cheque
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		acc, err := tx.GetAccountForUpdate(ctx, in.BankAccountID)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return ErrBankAccountInactive
		}
		c = Cheque{
			ID:             uuid.New(),
			OrganizationID: acc.OrganizationID,
			BankAccountID:  acc.ID,
			Number:         in.Number,
			Type:           in.Type,
			Amount:         in.Amount,
			Payee:          in.Payee,
			IssueDate:      shared.DateOnly(in.IssueDate),
			Status:         ChequePending,
			CreatedAt:      s.now(),
		}
		return tx.InsertCheque(ctx, c)
	})
	if err != nil {
		return Cheque{}, err
	}
	return c, nil
}

// GetCheque loads a cheque.
func (s *Service) GetCheque(ctx context.Context, id uuid.UUID) (Cheque, error) {
	return s.repo.GetCheque(ctx, id)
}

// DepositCheque credits a received cheque to the account.
func (s *Service) DepositCheque(ctx context.Context, id uuid.UUID) (Cheque, error) {
	return s.transitionCheque(ctx, id, ChequeReceived, ChequeDeposited, nil)
}

// ClearCheque debits an issued cheque once the bank has paid it.
func (s *Service) ClearCheque(ctx context.Context, id uuid.UUID, date time.Time) (Cheque, error) {
	if date.IsZero() {
		date = s.now()
	}
	cleared := shared.DateOnly(date)
	return s.transitionCheque(ctx, id, ChequeIssued, ChequeCleared, &cleared)
}

func (s *Service) transitionCheque(ctx context.Context, id uuid.UUID, want ChequeType, to ChequeStatus, clearedDate *time.Time) (Cheque, error) {
	peek, err := s.repo.GetCheque(ctx, id)
	if err != nil {
		return Cheque{}, err
	}
	var c Cheque
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetAccountForUpdate(ctx, peek.BankAccountID); err != nil {
			return err
		}
		c, err = tx.GetChequeForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Type != want {
			return ErrChequeWrongType
		}
		if c.Status != ChequePending {
			return ErrChequeTransition
		}
		ok, err := tx.TransitionCheque(ctx, id, ChequePending, to, clearedDate)
		if err != nil {
			return err
		}
		if !ok {
			return ErrChequeTransition
		}
		c.Status = to
		c.ClearedDate = clearedDate
		_, err = tx.AdjustBalance(ctx, c.BankAccountID, c.BalanceEffect(), s.now())
		return err
	})
	if err != nil {
		return Cheque{}, err
	}
	return c, nil
}

// DeleteCheque removes a cheque and reverses whatever it did to the balance.
func (s *Service) DeleteCheque(ctx context.Context, id uuid.UUID) error {
	peek, err := s.repo.GetCheque(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetAccountForUpdate(ctx, peek.BankAccountID); err != nil {
			return err
		}
		c, err := tx.GetChequeForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCheque(ctx, id); err != nil {
			return err
		}
		if effect := c.BalanceEffect(); !effect.IsZero() {
			if _, err := tx.AdjustBalance(ctx, c.BankAccountID, effect.Neg(), s.now()); err != nil {
				return err
			}
		}
		return nil
	})
}
