package jobs

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sipertani/sipertani/internal/resource"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOwnershipTransfer writes one ownership transfer to the audit log.
	TaskOwnershipTransfer = "audit:ownership_transfer"
	// TaskAuditPrune removes audit entries past the retention window.
	TaskAuditPrune = "audit:prune"
)

// ActionOwnershipTransfer is the audit action stored for transfers.
const ActionOwnershipTransfer = "ownership_transfer"

// AuditPrunePayload configures a prune run.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewOwnershipTransferTask constructs an Asynq task for t. The transfer id
// doubles as the task id so a replayed enqueue is rejected by the queue.
func NewOwnershipTransferTask(t resource.Transfer) (*asynq.Task, error) {
	if t.ID == "" || t.Entity == "" || t.RecordID == 0 {
		return nil, errors.New("jobs: transfer requires id, entity and record id")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOwnershipTransfer, data,
		asynq.TaskID(t.ID),
		asynq.MaxRetry(10),
		asynq.Retention(24*time.Hour),
	), nil
}

// NewAuditPruneTask constructs the periodic prune task.
func NewAuditPruneTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
