package banking

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateBankReconciliation snapshots the account's book balance and computes
// the adjusted statement balance.
func (s *Service) CreateBankReconciliation(ctx context.Context, in CreateReconciliationInput) (Reconciliation, error) {
	if err := in.Validate(); err != nil {
		return Reconciliation{}, err
	}
	var rec Reconciliation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		acc, err := tx.GetAccountForUpdate(ctx, in.BankAccountID)
		if err != nil {
			return err
		}
		adjusted := AdjustedBalance(in.StatementBalance, in.OutstandingDeposits, in.OutstandingChecks, in.BankCharges, in.InterestEarned)
		rec = Reconciliation{
			ID:                  uuid.New(),
			OrganizationID:      acc.OrganizationID,
			BankAccountID:       acc.ID,
			BankAccountName:     acc.Name,
			ReconciliationDate:  shared.DateOnly(in.ReconciliationDate),
			StatementBalance:    in.StatementBalance,
			BookBalance:         acc.CurrentBalance,
			OutstandingDeposits: in.OutstandingDeposits,
			OutstandingChecks:   in.OutstandingChecks,
			BankCharges:         in.BankCharges,
			InterestEarned:      in.InterestEarned,
			AdjustedBalance:     adjusted,
			Difference:          adjusted.Sub(acc.CurrentBalance),
			Status:              ReconciliationDraft,
			Notes:               in.Notes,
			CreatedAt:           s.now(),
		}
		return tx.InsertReconciliation(ctx, rec)
	})
	if err != nil {
		return Reconciliation{}, err
	}
	return rec, nil
}

// GetBankReconciliation loads a reconciliation.
func (s *Service) GetBankReconciliation(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	return s.repo.GetReconciliation(ctx, id)
}

// GetUnmatchedTransactions lists the unreconciled transactions of the account
// dated on or before the reconciliation date, oldest first.
func (s *Service) GetUnmatchedTransactions(ctx context.Context, id uuid.UUID) ([]Transaction, error) {
	rec, err := s.repo.GetReconciliation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListUnmatched(ctx, rec.BankAccountID, rec.ReconciliationDate)
}

// MatchTransactions marks transactions reconciled against id. Transactions of
// another bank account, or already reconciled elsewhere, are skipped and
// reported rather than failing the call. A missing transaction fails it.
func (s *Service) MatchTransactions(ctx context.Context, id uuid.UUID, matches []Match) (MatchResult, error) {
	var result MatchResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		result = MatchResult{}
		rec, err := tx.GetReconciliationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status == ReconciliationCompleted {
			return ErrReconciliationCompleted
		}
		for _, m := range matches {
			txn, err := tx.GetTransactionForUpdate(ctx, m.TransactionID)
			if err != nil {
				return err
			}
			if txn.BankAccountID != rec.BankAccountID {
				result.Skipped = append(result.Skipped, SkippedMatch{TransactionID: txn.ID, Reason: SkipOtherAccount})
				continue
			}
			if txn.IsReconciled {
				if txn.ReconciliationID == rec.ID {
					result.Matched = append(result.Matched, txn.ID)
				} else {
					result.Skipped = append(result.Skipped, SkippedMatch{TransactionID: txn.ID, Reason: SkipReconciledElsewhere})
				}
				continue
			}
			ok, err := tx.MarkReconciled(ctx, txn.ID, rec.ID)
			if err != nil {
				return err
			}
			if !ok {
				result.Skipped = append(result.Skipped, SkippedMatch{TransactionID: txn.ID, Reason: SkipReconciledElsewhere})
				continue
			}
			result.Matched = append(result.Matched, txn.ID)
		}
		if len(result.Matched) > 0 && rec.Status == ReconciliationDraft {
			if _, err := tx.SetReconciliationStatus(ctx, rec.ID, ReconciliationDraft, ReconciliationInProgress); err != nil {
				return err
			}
			rec.Status = ReconciliationInProgress
		}
		result.Reconciliation = rec
		return nil
	})
	if err != nil {
		return MatchResult{}, err
	}
	if len(result.Skipped) > 0 {
		s.logger.Info("reconciliation matches skipped",
			slog.String("reconciliation_id", id.String()),
			slog.Int("skipped", len(result.Skipped)))
	}
	return result, nil
}

// CompleteReconciliation closes a reconciliation. It happens once.
func (s *Service) CompleteReconciliation(ctx context.Context, id uuid.UUID, notes string) (Reconciliation, error) {
	var rec Reconciliation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		rec, err = tx.GetReconciliationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status == ReconciliationCompleted {
			return ErrReconciliationCompleted
		}
		now := s.now()
		if notes == "" {
			notes = rec.Notes
		}
		ok, err := tx.CompleteReconciliation(ctx, id, notes, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReconciliationCompleted
		}
		rec.Status = ReconciliationCompleted
		rec.Notes = notes
		rec.CompletedAt = &now
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}
	return rec, nil
}

// DeleteBankReconciliation unlinks every transaction that references the
// reconciliation, whoever matched it, and deletes it.
func (s *Service) DeleteBankReconciliation(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetReconciliationForUpdate(ctx, id); err != nil {
			return err
		}
		unlinked, err := tx.UnlinkReconciliation(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteReconciliation(ctx, id); err != nil {
			return err
		}
		s.logger.Debug("bank reconciliation deleted",
			slog.String("reconciliation_id", id.String()),
			slog.Int64("unlinked", unlinked))
		return nil
	})
}
