package compliance

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/member"
	"tutorhub/internal/notification"
	"tutorhub/internal/volunteer"
)

// ErrReportNotFound is returned when no report exists for a week start.
var ErrReportNotFound = errors.New("compliance report not found")

// The evaluator reads and writes through these capability slices so it can be
// exercised against in-memory fakes in tests and against mongo in production.

// VolunteerStore reads volunteers and writes their rolling counters.
type VolunteerStore interface {
	ListByRole(ctx context.Context, role string) ([]volunteer.Volunteer, error)
	SetLowLectureCounter(ctx context.Context, id primitive.ObjectID, count int, lastWeek *time.Time) error
}

// MembershipStore resolves the approval record gating a volunteer. A missing
// record is reported via member.ErrNotFound.
type MembershipStore interface {
	GetByEmail(ctx context.Context, email string) (member.Request, error)
}

// NotificationStore emits deduplicated low-lecture alerts.
type NotificationStore interface {
	ExistsForSubject(ctx context.Context, userID primitive.ObjectID, typ, subject, studentEmail string) (bool, error)
	Insert(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// ReportStore persists and looks up weekly snapshots.
type ReportStore interface {
	Insert(ctx context.Context, r Report) (Report, error)
	FindByWeekStart(ctx context.Context, weekStart time.Time) (Report, error)
}

// Transactor scopes a function to a single all-or-nothing transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
