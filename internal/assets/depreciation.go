package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/shared"
)

var two = decimal.NewFromInt(2)

// ComputeSchedule derives the month-by-month depreciation of asset between
// the month of start and end, starting from the already depreciated amount.
//
// Amounts are rounded per period. Units of production has no usage input and
// follows the straight-line formula. A straight-line schedule has one row per
// month of useful life: the last month takes the rounding residual so the net
// book value lands on the salvage value. Any charge is capped at the
// remaining headroom above salvage.
func ComputeSchedule(asset Asset, depreciated decimal.Decimal, start, end time.Time) []ScheduleRow {
	months := asset.UsefulLifeMonths()
	if months <= 0 {
		return nil
	}
	monthsD := decimal.NewFromInt(int64(months))
	salvage := asset.SalvageValue
	accumulated := depreciated
	nbv := asset.PurchasePrice.Sub(depreciated)
	straight := shared.Round2(asset.PurchasePrice.Sub(salvage).Div(monthsD))
	charged := chargedPeriods(depreciated, straight)

	var rows []ScheduleRow
	for cursor := shared.MonthStart(start); !cursor.After(end) && nbv.GreaterThan(salvage); cursor = cursor.AddDate(0, 1, 0) {
		headroom := nbv.Sub(salvage)
		var amount decimal.Decimal
		switch {
		case asset.Method == MethodDecliningBalance:
			amount = shared.Round2(nbv.Mul(two).Div(monthsD))
		case charged >= int64(months)-1:
			amount = headroom
		default:
			amount = straight
		}
		if amount.GreaterThan(headroom) {
			amount = headroom
		}
		if !amount.IsPositive() || nbv.Sub(amount).LessThan(salvage) {
			continue
		}
		accumulated = accumulated.Add(amount)
		nbv = nbv.Sub(amount)
		charged++
		rows = append(rows, ScheduleRow{
			Period:                  shared.PeriodOf(cursor),
			PeriodStart:             cursor,
			PeriodEnd:               shared.MonthEnd(cursor),
			Amount:                  amount,
			AccumulatedDepreciation: accumulated,
			NetBookValue:            nbv,
		})
	}
	return rows
}

// chargedPeriods is the number of straight-line months already covered by
// the depreciated amount.
func chargedPeriods(depreciated, straight decimal.Decimal) int64 {
	if !straight.IsPositive() {
		return 0
	}
	return depreciated.Div(straight).Round(0).IntPart()
}

// CalculateDepreciation previews the schedule from the posted depreciation of
// the asset. Nothing is persisted.
func (s *Service) CalculateDepreciation(ctx context.Context, assetID uuid.UUID, periodStart, periodEnd time.Time) ([]ScheduleRow, error) {
	if periodEnd.Before(shared.MonthStart(periodStart)) {
		return nil, fmt.Errorf("%w: period end precedes period start", shared.ErrValidation)
	}
	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	posted, err := s.repo.SumDepreciation(ctx, assetID, false)
	if err != nil {
		return nil, err
	}
	return ComputeSchedule(asset, posted, periodStart, periodEnd), nil
}

// CreateDepreciation persists the pending charge of one period. Charges
// already recorded but not yet posted count as depreciated so consecutive
// periods chain.
func (s *Service) CreateDepreciation(ctx context.Context, assetID uuid.UUID, period string) (Depreciation, error) {
	start, err := shared.ParsePeriod(period)
	if err != nil {
		return Depreciation{}, err
	}
	var dep Depreciation
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		dep, err = s.createDepreciation(ctx, tx, assetID, period, start)
		return err
	})
	if err != nil {
		return Depreciation{}, err
	}
	return dep, nil
}

func (s *Service) createDepreciation(ctx context.Context, tx TxRepository, assetID uuid.UUID, period string, start time.Time) (Depreciation, error) {
	asset, err := tx.GetAssetForUpdate(ctx, assetID)
	if err != nil {
		return Depreciation{}, err
	}
	if asset.Status != StatusActive {
		return Depreciation{}, ErrAssetInactive
	}
	if start.Before(shared.MonthStart(asset.PurchaseDate)) {
		return Depreciation{}, fmt.Errorf("%w: period %s precedes the purchase date", shared.ErrValidation, period)
	}
	if _, found, err := tx.FindDepreciation(ctx, assetID, period); err != nil {
		return Depreciation{}, err
	} else if found {
		return Depreciation{}, ErrDuplicateDepreciation
	}
	recorded, err := tx.SumDepreciation(ctx, assetID, true)
	if err != nil {
		return Depreciation{}, err
	}
	rows := ComputeSchedule(asset, recorded, start, shared.MonthEnd(start))
	if len(rows) == 0 {
		return Depreciation{}, ErrNothingToDepreciate
	}
	dep := s.newDepreciation(asset, rows[0])
	if err := tx.InsertDepreciation(ctx, dep); err != nil {
		return Depreciation{}, err
	}
	return dep, nil
}

// CreateSchedule persists pending charges for every period from..to that
// follows the latest recorded period.
func (s *Service) CreateSchedule(ctx context.Context, assetID uuid.UUID, from, to string) ([]Depreciation, error) {
	start, err := shared.ParsePeriod(from)
	if err != nil {
		return nil, err
	}
	end, err := shared.ParsePeriod(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end precedes period start", shared.ErrValidation)
	}
	var created []Depreciation
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		asset, err := tx.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.Status != StatusActive {
			return ErrAssetInactive
		}
		existing, err := tx.ListDepreciations(ctx, assetID)
		if err != nil {
			return err
		}
		if purchase := shared.MonthStart(asset.PurchaseDate); start.Before(purchase) {
			start = purchase
		}
		if n := len(existing); n > 0 {
			last, err := shared.ParsePeriod(existing[n-1].Period)
			if err != nil {
				return err
			}
			if next := last.AddDate(0, 1, 0); start.Before(next) {
				start = next
			}
		}
		recorded, err := tx.SumDepreciation(ctx, assetID, true)
		if err != nil {
			return err
		}
		for _, row := range ComputeSchedule(asset, recorded, start, shared.MonthEnd(end)) {
			dep := s.newDepreciation(asset, row)
			if err := tx.InsertDepreciation(ctx, dep); err != nil {
				return err
			}
			created = append(created, dep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetDepreciationSchedule returns the persisted rows of an asset by period.
func (s *Service) GetDepreciationSchedule(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error) {
	if _, err := s.repo.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return s.repo.ListDepreciations(ctx, assetID)
}

// PostDepreciation books a pending charge: debit depreciation expense, credit
// the asset account, then advance the asset's accumulated depreciation. All of
// it happens in one unit of work and at most once.
func (s *Service) PostDepreciation(ctx context.Context, id uuid.UUID, actor string) (Depreciation, error) {
	var dep Depreciation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		dep, err = s.postDepreciation(ctx, tx, id, actor)
		return err
	})
	if err != nil {
		return Depreciation{}, err
	}
	return dep, nil
}

func (s *Service) postDepreciation(ctx context.Context, tx TxRepository, id uuid.UUID, actor string) (Depreciation, error) {
	dep, err := tx.GetDepreciationForUpdate(ctx, id)
	if err != nil {
		return Depreciation{}, err
	}
	if dep.Status == DepreciationPosted {
		return Depreciation{}, ErrDepreciationPosted
	}
	asset, err := tx.GetAssetForUpdate(ctx, dep.AssetID)
	if err != nil {
		return Depreciation{}, err
	}
	if asset.Status != StatusActive {
		return Depreciation{}, ErrAssetInactive
	}
	accumulated := asset.AccumulatedDepreciation.Add(dep.Amount)
	nbv := asset.PurchasePrice.Sub(accumulated)
	if nbv.LessThan(asset.SalvageValue) {
		return Depreciation{}, ErrBelowSalvage
	}
	expense, err := accounts.Required(ctx, s.accounts, asset.OrganizationID, accounts.TypeExpense, accounts.SubtypeDepreciationExpense)
	if err != nil {
		return Depreciation{}, err
	}
	periodStart, err := shared.ParsePeriod(dep.Period)
	if err != nil {
		return Depreciation{}, err
	}
	memo := fmt.Sprintf("Depreciation %s %s", asset.Code, dep.Period)
	entry, err := s.ledger.Record(ctx, ledger.PostingInput{
		OrganizationID: asset.OrganizationID,
		Date:           shared.MonthEnd(periodStart),
		Type:           ledger.EntryDepreciation,
		Description:    memo,
		Reference:      asset.Code,
		SourceModule:   SourceDepreciation,
		SourceID:       dep.ID,
		Actor:          actor,
		Lines: []ledger.PostingLine{
			ledger.Debit(expense.ID, dep.Amount, memo),
			ledger.Credit(asset.AccountID, dep.Amount, memo),
		},
	})
	if err != nil {
		return Depreciation{}, err
	}

	now := s.now()
	asset.AccumulatedDepreciation = accumulated
	asset.NetBookValue = nbv
	asset.CurrentValue = nbv
	asset.UpdatedAt = now
	if err := tx.UpdateAssetValues(ctx, asset); err != nil {
		return Depreciation{}, err
	}
	ok, err := tx.MarkDepreciationPosted(ctx, dep.ID, entry.ID, now)
	if err != nil {
		return Depreciation{}, err
	}
	if !ok {
		return Depreciation{}, ErrDepreciationPosted
	}
	dep.Status = DepreciationPosted
	dep.JournalEntryID = entry.ID
	dep.PostedAt = &now
	return dep, nil
}

func (s *Service) newDepreciation(asset Asset, row ScheduleRow) Depreciation {
	return Depreciation{
		ID:                      uuid.New(),
		OrganizationID:          asset.OrganizationID,
		AssetID:                 asset.ID,
		Period:                  row.Period,
		Amount:                  row.Amount,
		AccumulatedDepreciation: row.AccumulatedDepreciation,
		NetBookValue:            row.NetBookValue,
		Status:                  DepreciationPending,
		CreatedAt:               s.now(),
	}
}
