package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hibiken/asynq"

	"github.com/sipertani/sipertani/jobs"
)

// opsCLI wraps one-off queue commands run alongside the worker binary.
type opsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	retention int
}

func newOpsCLI(opts asynq.RedisClientOpt, retentionDays int) *opsCLI {
	return &opsCLI{
		client:    asynq.NewClient(opts),
		inspector: asynq.NewInspector(opts),
		retention: retentionDays,
	}
}

func (c *opsCLI) Close() error {
	return errors.Join(c.inspector.Close(), c.client.Close())
}

// trigger enqueues a supported job by name.
func (c *opsCLI) trigger(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	switch name {
	case "prune", jobs.TaskAuditPrune:
		task, err := jobs.NewAuditPruneTask(c.retention)
		if err != nil {
			return nil, err
		}
		return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3))
	default:
		return nil, fmt.Errorf("worker: unsupported job %s", name)
	}
}

// queueStats summarises the current queue state.
type queueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

func (c *opsCLI) stats() (queueStats, error) {
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return queueStats{}, err
	}
	return queueStats{
		Queue:     info.Queue,
		Pending:   info.Pending,
		Active:    info.Active,
		Scheduled: info.Scheduled,
		Retry:     info.Retry,
		Archived:  info.Archived,
	}, nil
}

// runOps executes the command named by args and writes its result as JSON.
func runOps(ctx context.Context, c *opsCLI, args []string, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	switch args[0] {
	case "stats":
		stats, err := c.stats()
		if err != nil {
			return err
		}
		return enc.Encode(stats)
	case "trigger":
		if len(args) < 2 {
			return errors.New("usage: worker trigger <job>")
		}
		info, err := c.trigger(ctx, args[1])
		if err != nil {
			return err
		}
		return enc.Encode(map[string]string{"id": info.ID, "type": info.Type, "queue": info.Queue})
	default:
		return fmt.Errorf("worker: unknown command %q", args[0])
	}
}
