package assets

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

// RunSummary reports the outcome of a period run.
type RunSummary struct {
	Period  string
	Posted  int
	Skipped int
	Failed  int
}

// RunOutcome labels what happened to one asset in a run.
type RunOutcome string

const (
	RunPosted  RunOutcome = "posted"
	RunSkipped RunOutcome = "skipped"
	RunFailed  RunOutcome = "failed"
)

// RunDepreciation creates and posts the period charge of every active asset of
// the organization. Each asset is its own unit of work: a failure is logged
// and counted without affecting the others.
func (s *Service) RunDepreciation(ctx context.Context, orgID uuid.UUID, period string, actor string, observe func(RunOutcome)) (RunSummary, error) {
	list, err := s.repo.ListAssets(ctx, orgID, StatusActive)
	if err != nil {
		return RunSummary{}, err
	}
	summary := RunSummary{Period: period}
	for _, asset := range list {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome := s.runAsset(ctx, asset, period, actor)
		switch outcome {
		case RunPosted:
			summary.Posted++
		case RunSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		if observe != nil {
			observe(outcome)
		}
	}
	return summary, nil
}

func (s *Service) runAsset(ctx context.Context, asset Asset, period, actor string) RunOutcome {
	start, err := shared.ParsePeriod(period)
	if err != nil {
		s.logger.Warn("depreciation run period invalid", slog.String("period", period), slog.Any("error", err))
		return RunFailed
	}
	// Not yet in service during the period.
	if start.Before(shared.MonthStart(asset.PurchaseDate)) {
		return RunSkipped
	}

	var posted bool
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		dep, found, err := tx.FindDepreciation(ctx, asset.ID, period)
		if err != nil {
			return err
		}
		if found && dep.Status == DepreciationPosted {
			return nil
		}
		if !found {
			if dep, err = s.createDepreciation(ctx, tx, asset.ID, period, start); err != nil {
				return err
			}
		}
		if _, err := s.postDepreciation(ctx, tx, dep.ID, actor); err != nil {
			return err
		}
		posted = true
		return nil
	})
	switch {
	case err == nil && posted:
		return RunPosted
	case err == nil, errors.Is(err, ErrNothingToDepreciate):
		return RunSkipped
	default:
		s.logger.Warn("depreciation run failed for asset",
			slog.String("asset_id", asset.ID.String()),
			slog.String("period", period),
			slog.Any("error", err))
		return RunFailed
	}
}
