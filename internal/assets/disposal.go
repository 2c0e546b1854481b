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

// CreateAssetDisposal records a draft disposal with the asset's carrying
// amounts snapshotted and gainLoss = disposalAmount - netBookValue.
func (s *Service) CreateAssetDisposal(ctx context.Context, in CreateDisposalInput) (Disposal, error) {
	if err := in.Validate(); err != nil {
		return Disposal{}, err
	}
	if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
		return Disposal{}, err
	}
	var d Disposal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		d, err = s.createDisposal(ctx, tx, in)
		return err
	})
	if err != nil {
		return Disposal{}, err
	}
	return d, nil
}

// ApproveAssetDisposal moves a draft disposal to approved.
func (s *Service) ApproveAssetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error) {
	var d Disposal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		d, err = tx.GetDisposalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d.Status != DocumentDraft {
			return ErrDisposalNotDraft
		}
		ok, err := tx.ApproveDisposal(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDisposalNotDraft
		}
		d.Status = DocumentApproved
		return nil
	})
	if err != nil {
		return Disposal{}, err
	}
	return d, nil
}

// PostAssetDisposal books a disposal and retires the asset.
func (s *Service) PostAssetDisposal(ctx context.Context, id uuid.UUID, actor string) (Disposal, error) {
	var d Disposal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		d, err = s.postDisposal(ctx, tx, id, actor)
		return err
	})
	if err != nil {
		return Disposal{}, err
	}
	return d, nil
}

// DisposeAsset creates and posts a disposal in a single unit of work.
func (s *Service) DisposeAsset(ctx context.Context, in CreateDisposalInput) (Disposal, error) {
	if err := in.Validate(); err != nil {
		return Disposal{}, err
	}
	if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
		return Disposal{}, err
	}
	var d Disposal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := s.createDisposal(ctx, tx, in)
		if err != nil {
			return err
		}
		d, err = s.postDisposal(ctx, tx, created.ID, in.Actor)
		return err
	})
	if err != nil {
		return Disposal{}, err
	}
	return d, nil
}

func (s *Service) createDisposal(ctx context.Context, tx TxRepository, in CreateDisposalInput) (Disposal, error) {
	asset, err := tx.GetAssetForUpdate(ctx, in.AssetID)
	if err != nil {
		return Disposal{}, err
	}
	if asset.Status != StatusActive {
		return Disposal{}, ErrAssetInactive
	}
	d := Disposal{
		ID:                      uuid.New(),
		OrganizationID:          asset.OrganizationID,
		AssetID:                 asset.ID,
		AssetCode:               asset.Code,
		AssetName:               asset.Name,
		DisposalDate:            shared.DateOnly(in.DisposalDate),
		Method:                  in.Method,
		DisposalAmount:          in.DisposalAmount,
		PurchasePrice:           asset.PurchasePrice,
		AccumulatedDepreciation: asset.AccumulatedDepreciation,
		NetBookValue:            asset.NetBookValue,
		GainLoss:                in.DisposalAmount.Sub(asset.NetBookValue),
		AccountID:               in.AccountID,
		Status:                  DocumentDraft,
		Notes:                   in.Notes,
		CreatedAt:               s.now(),
	}
	if err := tx.InsertDisposal(ctx, d); err != nil {
		return Disposal{}, err
	}
	return d, nil
}

func (s *Service) postDisposal(ctx context.Context, tx TxRepository, id uuid.UUID, actor string) (Disposal, error) {
	d, err := tx.GetDisposalForUpdate(ctx, id)
	if err != nil {
		return Disposal{}, err
	}
	if d.Status == DocumentPosted {
		return Disposal{}, ErrDisposalPosted
	}
	asset, err := tx.GetAssetForUpdate(ctx, d.AssetID)
	if err != nil {
		return Disposal{}, err
	}
	if asset.Status != StatusActive {
		return Disposal{}, ErrAssetInactive
	}
	// Depreciation posted since the draft was created moves the carrying amount.
	d.PurchasePrice = asset.PurchasePrice
	d.AccumulatedDepreciation = asset.AccumulatedDepreciation
	d.NetBookValue = asset.NetBookValue
	d.GainLoss = d.DisposalAmount.Sub(asset.NetBookValue)

	lines, err := s.disposalLines(ctx, asset, d)
	if err != nil {
		return Disposal{}, err
	}
	switch len(lines) {
	case 0:
		// Nothing left to remove and nothing received.
	case 1:
		return Disposal{}, fmt.Errorf("%w: disposal produced a single ledger line", shared.ErrValidation)
	default:
		memo := fmt.Sprintf("Disposal of %s (%s)", asset.Code, d.Method)
		entry, err := s.ledger.Record(ctx, ledger.PostingInput{
			OrganizationID: asset.OrganizationID,
			Date:           d.DisposalDate,
			Type:           ledger.EntryDisposal,
			Description:    memo,
			Reference:      asset.Code,
			SourceModule:   SourceDisposal,
			SourceID:       d.ID,
			Actor:          actor,
			Lines:          lines,
		})
		if err != nil {
			return Disposal{}, err
		}
		d.JournalEntryID = entry.ID
	}

	now := s.now()
	asset.Status = StatusDisposed
	asset.CurrentValue = decimal.Zero
	asset.NetBookValue = decimal.Zero
	asset.UpdatedAt = now
	if err := tx.UpdateAssetValues(ctx, asset); err != nil {
		return Disposal{}, err
	}
	d.Status = DocumentPosted
	d.PostedAt = &now
	ok, err := tx.MarkDisposalPosted(ctx, d)
	if err != nil {
		return Disposal{}, err
	}
	if !ok {
		return Disposal{}, ErrDisposalPosted
	}
	return d, nil
}

// disposalLines removes the gross carrying amount from the asset account,
// clears accumulated depreciation, books the proceeds and recognises the
// gain or loss. Zero lines are omitted.
func (s *Service) disposalLines(ctx context.Context, asset Asset, d Disposal) ([]ledger.PostingLine, error) {
	org := asset.OrganizationID
	memo := "Disposal " + asset.Code
	var lines []ledger.PostingLine

	assetCredit := d.NetBookValue.Add(d.AccumulatedDepreciation)
	if d.AccumulatedDepreciation.IsPositive() {
		acc, ok, err := accounts.Optional(ctx, s.accounts, org, accounts.TypeAsset, accounts.SubtypeAccumulatedDepreciation)
		if err != nil {
			return nil, err
		}
		if ok {
			lines = append(lines, ledger.Debit(acc.ID, d.AccumulatedDepreciation, memo+" accumulated depreciation"))
		} else {
			assetCredit = d.NetBookValue
		}
	}
	if d.DisposalAmount.IsPositive() {
		lines = append(lines, ledger.Debit(d.AccountID, d.DisposalAmount, memo+" proceeds"))
	}
	switch {
	case d.GainLoss.IsPositive():
		target := d.AccountID
		gain, ok, err := accounts.Optional(ctx, s.accounts, org, accounts.TypeRevenue, accounts.SubtypeGainOnDisposal)
		if err != nil {
			return nil, err
		}
		if ok {
			target = gain.ID
		}
		lines = append(lines, ledger.Credit(target, d.GainLoss, memo+" gain"))
	case d.GainLoss.IsNegative():
		target := d.AccountID
		loss, ok, err := accounts.Optional(ctx, s.accounts, org, accounts.TypeExpense, accounts.SubtypeLossOnDisposal)
		if err != nil {
			return nil, err
		}
		if ok {
			target = loss.ID
		}
		lines = append(lines, ledger.Debit(target, d.GainLoss.Neg(), memo+" loss"))
	}
	if assetCredit.IsPositive() {
		lines = append(lines, ledger.Credit(asset.AccountID, assetCredit, memo))
	}
	return lines, nil
}
