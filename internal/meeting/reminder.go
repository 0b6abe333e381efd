package meeting

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tutorhub/internal/mail"
)

// ReminderStore is the slice of the repository the sweep needs.
type ReminderStore interface {
	DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]Meeting, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}

// Reminder sends one email per participant for meetings starting within the
// window. Each meeting is reminded at most once; a send failure leaves the
// flag unset so the next sweep retries.
type Reminder struct {
	store  ReminderStore
	mailer mail.Mailer
	window time.Duration
	logger *zap.Logger
}

// NewReminder creates the sweep job.
func NewReminder(store ReminderStore, mailer mail.Mailer, window time.Duration, logger *zap.Logger) *Reminder {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Reminder{store: store, mailer: mailer, window: window, logger: logger}
}

// Sweep runs one pass. Returns the number of meetings reminded.
func (r *Reminder) Sweep(ctx context.Context, now time.Time) (int, error) {
	due, err := r.store.DueForReminder(ctx, now, r.window)
	if err != nil {
		return 0, fmt.Errorf("listing due meetings: %w", err)
	}

	reminded := 0
	for _, m := range due {
		failed := false
		for _, p := range m.Participants {
			err := r.mailer.Send(ctx, mail.Message{
				ToName:  p.Name,
				ToEmail: p.Email,
				Subject: "Upcoming meeting: " + m.Title,
				Body: fmt.Sprintf("Hi %s,\n\nReminder: %q starts at %s.\nLink: %s\n",
					p.Name, m.Title, m.StartsAt.Format(time.RFC1123), m.Link),
			})
			if err != nil {
				r.logger.Warn("meeting reminder mail failed",
					zap.String("meeting", m.ID.Hex()),
					zap.String("to", p.Email),
					zap.Error(err))
				failed = true
			}
		}
		if failed {
			continue
		}
		if err := r.store.MarkReminderSent(ctx, m.ID); err != nil {
			r.logger.Warn("marking reminder sent failed", zap.String("meeting", m.ID.Hex()), zap.Error(err))
			continue
		}
		reminded++
	}
	return reminded, nil
}
