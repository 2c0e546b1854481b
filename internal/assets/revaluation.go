package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// CreateAssetRevaluation records a draft revaluation against the asset's
// current value.
func (s *Service) CreateAssetRevaluation(ctx context.Context, in CreateRevaluationInput) (Revaluation, error) {
	if err := in.Validate(); err != nil {
		return Revaluation{}, err
	}
	if in.AccountID != uuid.Nil {
		if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
			return Revaluation{}, err
		}
	}
	var rv Revaluation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		asset, err := tx.GetAssetForUpdate(ctx, in.AssetID)
		if err != nil {
			return err
		}
		if asset.Status != StatusActive {
			return ErrAssetInactive
		}
		if in.NewValue.LessThan(asset.AccumulatedDepreciation) {
			return fmt.Errorf("%w: new value is below accumulated depreciation", shared.ErrValidation)
		}
		amount, direction := revaluationDelta(asset.CurrentValue, in.NewValue)
		if amount.IsZero() {
			return ErrNoRevaluationChange
		}
		rv = Revaluation{
			ID:                uuid.New(),
			OrganizationID:    asset.OrganizationID,
			AssetID:           asset.ID,
			AssetCode:         asset.Code,
			AssetName:         asset.Name,
			RevaluationDate:   shared.DateOnly(in.RevaluationDate),
			PreviousValue:     asset.CurrentValue,
			NewValue:          in.NewValue,
			RevaluationAmount: amount,
			Type:              direction,
			AccountID:         in.AccountID,
			Status:            DocumentDraft,
			Reason:            in.Reason,
			CreatedAt:         s.now(),
		}
		return tx.InsertRevaluation(ctx, rv)
	})
	if err != nil {
		return Revaluation{}, err
	}
	return rv, nil
}

// PostAssetRevaluation books a revaluation and restates the asset.
// Upward: debit asset, credit reserve. Downward: debit the reserve up to its
// available balance and the remainder to revaluation loss, credit asset.
func (s *Service) PostAssetRevaluation(ctx context.Context, id uuid.UUID, actor string) (Revaluation, error) {
	var rv Revaluation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		rv, err = tx.GetRevaluationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rv.Status == DocumentPosted {
			return ErrRevaluationPosted
		}
		asset, err := tx.GetAssetForUpdate(ctx, rv.AssetID)
		if err != nil {
			return err
		}
		if asset.Status != StatusActive {
			return ErrAssetInactive
		}
		rv.PreviousValue = asset.CurrentValue
		rv.RevaluationAmount, rv.Type = revaluationDelta(asset.CurrentValue, rv.NewValue)
		if rv.RevaluationAmount.IsZero() {
			return ErrNoRevaluationChange
		}

		reserveID := rv.AccountID
		if reserveID == uuid.Nil {
			reserve, err := accounts.Required(ctx, s.accounts, asset.OrganizationID, accounts.TypeEquity, accounts.SubtypeRevaluationReserve)
			if err != nil {
				return err
			}
			reserveID = reserve.ID
		}

		memo := fmt.Sprintf("Revaluation of %s (%s)", asset.Code, rv.Type)
		var lines []ledger.PostingLine
		if rv.Type == RevaluationUpward {
			lines = []ledger.PostingLine{
				ledger.Debit(asset.AccountID, rv.RevaluationAmount, memo),
				ledger.Credit(reserveID, rv.RevaluationAmount, memo),
			}
		} else {
			available, err := s.reserve.AvailableReserve(ctx, asset, reserveID)
			if err != nil {
				return err
			}
			rv.ReserveAmount = decimal.Min(decimal.Max(available, decimal.Zero), rv.RevaluationAmount)
			rv.LossAmount = rv.RevaluationAmount.Sub(rv.ReserveAmount)
			if rv.ReserveAmount.IsPositive() {
				lines = append(lines, ledger.Debit(reserveID, rv.ReserveAmount, memo))
			}
			if rv.LossAmount.IsPositive() {
				loss, err := accounts.Required(ctx, s.accounts, asset.OrganizationID, accounts.TypeExpense, accounts.SubtypeRevaluationLoss)
				if err != nil {
					return err
				}
				lines = append(lines, ledger.Debit(loss.ID, rv.LossAmount, memo))
			}
			lines = append(lines, ledger.Credit(asset.AccountID, rv.RevaluationAmount, memo))
		}

		entry, err := s.ledger.Record(ctx, ledger.PostingInput{
			OrganizationID: asset.OrganizationID,
			Date:           rv.RevaluationDate,
			Type:           ledger.EntryRevaluation,
			Description:    memo,
			Reference:      asset.Code,
			SourceModule:   SourceRevaluation,
			SourceID:       rv.ID,
			Actor:          actor,
			Lines:          lines,
		})
		if err != nil {
			return err
		}

		now := s.now()
		asset.CurrentValue = rv.NewValue
		asset.NetBookValue = rv.NewValue.Sub(asset.AccumulatedDepreciation)
		asset.UpdatedAt = now
		if err := tx.UpdateAssetValues(ctx, asset); err != nil {
			return err
		}
		rv.Status = DocumentPosted
		rv.JournalEntryID = entry.ID
		rv.PostedAt = &now
		ok, err := tx.MarkRevaluationPosted(ctx, rv)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRevaluationPosted
		}
		return nil
	})
	if err != nil {
		return Revaluation{}, err
	}
	return rv, nil
}

func revaluationDelta(previous, next decimal.Decimal) (decimal.Decimal, RevaluationType) {
	if next.GreaterThanOrEqual(previous) {
		return next.Sub(previous), RevaluationUpward
	}
	return previous.Sub(next), RevaluationDownward
}
