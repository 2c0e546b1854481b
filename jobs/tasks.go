package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fincore/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDepreciationRun posts one period of depreciation for an organization.
	TaskDepreciationRun = "assets:depreciation_run"
)

// DepreciationRunPayload selects the organization and month of a run. An
// empty period means the month before the one the task executes in.
type DepreciationRunPayload struct {
	OrganizationID string `json:"organization_id"`
	Period         string `json:"period,omitempty"`
}

// Validate checks identifiers before the task is queued or handled.
func (p DepreciationRunPayload) Validate() error {
	if _, err := shared.ParseID("organization_id", p.OrganizationID); err != nil {
		return err
	}
	if p.Period != "" {
		if _, err := shared.ParsePeriod(p.Period); err != nil {
			return err
		}
	}
	return nil
}

// NewDepreciationRunTask constructs an Asynq task for a depreciation run.
func NewDepreciationRunTask(payload DepreciationRunPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDepreciationRun, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// DepreciationCron builds one cron registration per organization.
func DepreciationCron(spec string, organizations []string) ([]CronRegistration, error) {
	out := make([]CronRegistration, 0, len(organizations))
	for _, raw := range organizations {
		task, err := NewDepreciationRunTask(DepreciationRunPayload{OrganizationID: strings.TrimSpace(raw)})
		if err != nil {
			return nil, fmt.Errorf("jobs: depreciation organization %q: %w", raw, err)
		}
		out = append(out, CronRegistration{Spec: spec, Task: task})
	}
	return out, nil
}
