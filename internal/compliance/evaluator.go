package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/auth"
	"tutorhub/internal/member"
	"tutorhub/internal/notification"
	"tutorhub/internal/volunteer"
)

// Evaluator computes the weekly under-target members. In scheduled mode it
// also mutates rolling counters, emits notifications and persists the report;
// the caller is expected to wrap a scheduled run in a transaction. In
// non-scheduled mode it performs no writes at all.
type Evaluator struct {
	volunteers VolunteerStore
	members    MembershipStore
	notifs     NotificationStore
	reports    ReportStore
	loc        *time.Location
	logger     *zap.Logger
}

// NewEvaluator creates an evaluator bucketing weeks in loc.
func NewEvaluator(volunteers VolunteerStore, members MembershipStore, notifs NotificationStore, reports ReportStore, loc *time.Location, logger *zap.Logger) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{
		volunteers: volunteers,
		members:    members,
		notifs:     notifs,
		reports:    reports,
		loc:        loc,
		logger:     logger,
	}
}

// Run evaluates every role-user volunteer against the most recently completed
// week. Missing membership records and empty rosters are silently tolerated;
// store failures abort the whole pass.
func (e *Evaluator) Run(ctx context.Context, now time.Time, scheduled bool) (Outcome, error) {
	start, end := Window(now, e.loc)
	out := Outcome{WeekStart: start, WeekEnd: end}

	users, err := e.volunteers.ListByRole(ctx, auth.RoleUser)
	if err != nil {
		return Outcome{}, fmt.Errorf("listing volunteers: %w", err)
	}

	for _, v := range users {
		out.TotalProcessed++

		req, err := e.members.GetByEmail(ctx, v.Email)
		if err != nil {
			if errors.Is(err, member.ErrNotFound) {
				continue
			}
			return Outcome{}, fmt.Errorf("membership lookup for %s: %w", v.Email, err)
		}
		if req.Status != member.StatusApproved {
			continue
		}

		if len(v.Students) == 0 {
			// Nothing to fail against; a stale counter is cleared.
			if scheduled && v.LowLectureWeekCount != 0 {
				if err := e.volunteers.SetLowLectureCounter(ctx, v.ID, 0, nil); err != nil {
					return Outcome{}, fmt.Errorf("resetting counter for %s: %w", v.Email, err)
				}
			}
			continue
		}

		underStudents, err := e.evaluateStudents(ctx, v, start, end, scheduled, &out)
		if err != nil {
			return Outcome{}, err
		}

		if len(underStudents) > 0 {
			out.Members = append(out.Members, MemberResult{
				ID:                  v.ID.Hex(),
				Name:                v.Name,
				Email:               v.Email,
				LowLectureWeekCount: v.LowLectureWeekCount,
				UnderTargetStudents: underStudents,
				Lectures:            summarizeLectures(v.Lectures),
			})
			// The week guard keeps a re-run for the same week from double
			// counting.
			if scheduled && (v.LastLowLectureWeek == nil || v.LastLowLectureWeek.Before(start)) {
				weekStart := start
				if err := e.volunteers.SetLowLectureCounter(ctx, v.ID, v.LowLectureWeekCount+1, &weekStart); err != nil {
					return Outcome{}, fmt.Errorf("incrementing counter for %s: %w", v.Email, err)
				}
			}
		} else if scheduled && v.LowLectureWeekCount != 0 {
			if err := e.volunteers.SetLowLectureCounter(ctx, v.ID, 0, nil); err != nil {
				return Outcome{}, fmt.Errorf("resetting counter for %s: %w", v.Email, err)
			}
		}
	}

	if scheduled {
		report := Report{
			WeekStart:      start,
			WeekEnd:        end,
			Results:        out.Members,
			TotalMembers:   out.TotalProcessed,
			FlaggedMembers: len(out.Members),
			CreatedAt:      time.Now().UTC(),
		}
		inserted, err := e.reports.Insert(ctx, report)
		if err != nil {
			return Outcome{}, fmt.Errorf("persisting report: %w", err)
		}
		out.Report = &inserted
	}

	e.logger.Info("compliance evaluation finished",
		zap.Time("week_start", start),
		zap.Time("week_end", end),
		zap.Bool("scheduled", scheduled),
		zap.Int("processed", out.TotalProcessed),
		zap.Int("flagged", len(out.Members)))
	return out, nil
}

func (e *Evaluator) evaluateStudents(ctx context.Context, v volunteer.Volunteer, start, end time.Time, scheduled bool, out *Outcome) ([]UnderTargetStudent, error) {
	var underStudents []UnderTargetStudent

	for _, st := range v.Students {
		if len(st.Subjects) == 0 {
			continue
		}

		var under []UnderTargetSubject
		for _, a := range st.Subjects {
			delivered := countDelivered(v.Lectures, start, end, st.Email, a.Name)
			if delivered >= a.MinLectures {
				continue
			}
			under = append(under, UnderTargetSubject{
				Name:              a.Name,
				MinLectures:       a.MinLectures,
				DeliveredLectures: delivered,
			})

			if !scheduled {
				continue
			}
			exists, err := e.notifs.ExistsForSubject(ctx, v.ID,
				notification.TypeLowLecturePerSubject, a.Name, st.Email)
			if err != nil {
				return nil, fmt.Errorf("notification lookup for %s: %w", v.Email, err)
			}
			if exists {
				continue
			}
			created, err := e.notifs.Insert(ctx, notification.Notification{
				UserID: v.ID,
				Type:   notification.TypeLowLecturePerSubject,
				Message: fmt.Sprintf("You delivered %d of %d required %s lectures for %s last week.",
					delivered, a.MinLectures, a.Name, st.Name),
				Detail: notification.Detail{
					Subject:      a.Name,
					StudentEmail: strings.ToLower(st.Email),
					Required:     a.MinLectures,
					Delivered:    delivered,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("creating notification for %s: %w", v.Email, err)
			}
			out.CreatedNotifications = append(out.CreatedNotifications, created)
		}

		if len(under) > 0 {
			underStudents = append(underStudents, UnderTargetStudent{
				StudentName:         st.Name,
				StudentEmail:        st.Email,
				AcademicLevel:       st.Grade,
				UnderTargetSubjects: under,
			})
		}
	}
	return underStudents, nil
}

// countDelivered counts lectures inside [start, end] (inclusive bounds)
// delivered to the student for the exact subject name. Student email matching
// is case-insensitive.
func countDelivered(lectures []volunteer.Lecture, start, end time.Time, studentEmail, subject string) int {
	count := 0
	for _, l := range lectures {
		if l.CreatedAt.Before(start) || l.CreatedAt.After(end) {
			continue
		}
		if !strings.EqualFold(l.StudentEmail, studentEmail) {
			continue
		}
		if l.Subject != subject {
			continue
		}
		count++
	}
	return count
}

func summarizeLectures(lectures []volunteer.Lecture) []LectureSummary {
	out := make([]LectureSummary, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, LectureSummary{
			ID:           l.ID.Hex(),
			Name:         l.Name,
			Subject:      l.Subject,
			StudentEmail: l.StudentEmail,
			Link:         l.Link,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out
}
