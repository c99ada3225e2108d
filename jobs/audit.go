package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sipertani/sipertani/internal/jobs"
	"github.com/sipertani/sipertani/internal/resource"
	"github.com/sipertani/sipertani/internal/shared"
)

// AuditWriter persists audit entries.
type AuditWriter interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// TransferJob writes ownership transfers to the audit log.
type TransferJob struct {
	Audit   AuditWriter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTransferJob initialises the transfer handler.
func NewTransferJob(audit AuditWriter, logger *slog.Logger, metrics *jobmetrics.Metrics) *TransferJob {
	return &TransferJob{Audit: audit, Logger: logger, Metrics: metrics}
}

// Handle decodes the transfer and records it. Malformed payloads are not
// retried.
func (j *TransferJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Audit == nil {
		return errors.New("ownership transfer: handler not configured")
	}
	var transfer resource.Transfer
	if err := json.Unmarshal(t.Payload(), &transfer); err != nil {
		return fmt.Errorf("decode transfer: %v: %w", err, asynq.SkipRetry)
	}
	if transfer.ID == "" || transfer.Entity == "" {
		return fmt.Errorf("incomplete transfer: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskOwnershipTransfer)
	defer func() { err = tracker.End(err) }()

	err = j.Audit.Record(ctx, shared.AuditLog{
		ID:       transfer.ID,
		Actor:    transfer.Actor,
		Action:   ActionOwnershipTransfer,
		Entity:   transfer.Entity,
		EntityID: transfer.RecordID.String(),
		Meta: map[string]any{
			"from": transfer.From,
			"to":   transfer.To,
		},
		At: transfer.At,
	})
	if err != nil {
		j.logger().Error("record ownership transfer", slog.String("id", transfer.ID), slog.Any("error", err))
		return err
	}
	j.Metrics.AddTransfer(transfer.Entity)
	j.logger().Info("ownership transfer recorded",
		slog.String("id", transfer.ID),
		slog.String("entity", transfer.Entity),
		slog.String("record_id", transfer.RecordID.String()),
	)
	return nil
}

func (j *TransferJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// PruneJob deletes audit entries older than the payload's retention window.
type PruneJob struct {
	DB      shared.Execer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPruneJob initialises the prune handler.
func NewPruneJob(db shared.Execer, logger *slog.Logger, metrics *jobmetrics.Metrics) *PruneJob {
	return &PruneJob{
		DB:      db,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the prune.
func (j *PruneJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.DB == nil {
		return errors.New("audit prune: handler not configured")
	}
	var payload AuditPrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode prune payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 365
	}

	tracker := j.Metrics.Track(TaskAuditPrune)
	defer func() { err = tracker.End(err) }()

	cutoff := j.clock().AddDate(0, 0, -payload.RetentionDays)
	tag, err := j.DB.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return err
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("pruned audit log",
		slog.Int64("rows", tag.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}
