package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fincore/internal/assets"
	"github.com/odyssey-erp/fincore/internal/observability"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// DepreciationRunner is the asset service surface the job drives.
type DepreciationRunner interface {
	RunDepreciation(ctx context.Context, orgID uuid.UUID, period, actor string, observe func(assets.RunOutcome)) (assets.RunSummary, error)
}

// DepreciationRunJob handles TaskDepreciationRun.
type DepreciationRunJob struct {
	runner  DepreciationRunner
	metrics *observability.FinanceMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewDepreciationRunJob wires the job.
func NewDepreciationRunJob(runner DepreciationRunner, metrics *observability.FinanceMetrics, logger *slog.Logger, now func() time.Time) *DepreciationRunJob {
	if now == nil {
		now = time.Now
	}
	return &DepreciationRunJob{runner: runner, metrics: metrics, logger: logger, now: now}
}

const runActor = "scheduler"

// Handle executes a run. Assets that already have a posted row for the
// period are skipped, so a retried task only redoes the failed ones.
func (j *DepreciationRunJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DepreciationRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode depreciation payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	orgID := uuid.MustParse(payload.OrganizationID)
	period := payload.Period
	if period == "" {
		period = shared.PeriodOf(shared.MonthStart(j.now()).AddDate(0, -1, 0))
	}

	summary, err := j.runner.RunDepreciation(ctx, orgID, period, runActor, func(o assets.RunOutcome) {
		j.metrics.DepreciationRunAsset(string(o))
	})
	if err != nil {
		return err
	}
	j.logger.Info("depreciation run finished",
		slog.String("job", TaskDepreciationRun),
		slog.String("organization_id", orgID.String()),
		slog.String("period", period),
		slog.Int("posted", summary.Posted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	if summary.Failed > 0 {
		return fmt.Errorf("depreciation run %s: %d assets failed", period, summary.Failed)
	}
	return nil
}
