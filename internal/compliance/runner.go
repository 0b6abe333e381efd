package compliance

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/queue"
)

// Runner executes scheduled compliance runs: one evaluation inside a single
// transaction so counter updates, notifications and the report commit or roll
// back together. Queue messages for created notifications are published only
// after a successful commit.
type Runner struct {
	evaluator *Evaluator
	tx        Transactor
	queue     queue.Queue
	logger    *zap.Logger
}

// NewRunner creates a runner.
func NewRunner(evaluator *Evaluator, tx Transactor, q queue.Queue, logger *zap.Logger) *Runner {
	return &Runner{evaluator: evaluator, tx: tx, queue: q, logger: logger}
}

// RunScheduled performs one scheduled evaluation for "now".
func (r *Runner) RunScheduled(ctx context.Context, now time.Time) (Outcome, error) {
	var out Outcome
	err := r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var runErr error
		out, runErr = r.evaluator.Run(txCtx, now, true)
		return runErr
	})
	if err != nil {
		runsTotal.WithLabelValues("failure").Inc()
		return Outcome{}, err
	}

	runsTotal.WithLabelValues("success").Inc()
	flaggedMembers.Set(float64(len(out.Members)))
	notificationsEmitted.Add(float64(len(out.CreatedNotifications)))

	for _, n := range out.CreatedNotifications {
		body, _ := json.Marshal(n)
		if err := r.queue.Publish(ctx, queue.Message{Type: queue.TypeNotificationCreated, Body: body}); err != nil {
			r.logger.Warn("publishing notification message failed",
				zap.String("notification", n.ID.Hex()), zap.Error(err))
		}
	}
	return out, nil
}
