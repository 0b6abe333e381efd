package compliance

import (
	"context"
	"errors"
	"time"
)

// Service answers the on-demand low-lecture query. It prefers the snapshot a
// scheduled run already persisted for the current window and falls back to a
// live read-only evaluation before the first run lands. The on-demand path
// never mutates counters or writes a report.
type Service struct {
	evaluator *Evaluator
	reports   ReportStore
	loc       *time.Location
}

// NewService creates the query service.
func NewService(evaluator *Evaluator, reports ReportStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{evaluator: evaluator, reports: reports, loc: loc}
}

// Result is what the admin endpoint returns.
type Result struct {
	Members        []MemberResult
	WeekStart      time.Time
	WeekEnd        time.Time
	TotalProcessed int
	FromReport     bool
}

// LowLectureMembers resolves the flagged members for the current window.
func (s *Service) LowLectureMembers(ctx context.Context, now time.Time) (Result, error) {
	start, end := Window(now, s.loc)

	report, err := s.reports.FindByWeekStart(ctx, start)
	if err == nil {
		return Result{
			Members:        report.Results,
			WeekStart:      report.WeekStart,
			WeekEnd:        report.WeekEnd,
			TotalProcessed: report.TotalMembers,
			FromReport:     true,
		}, nil
	}
	if !errors.Is(err, ErrReportNotFound) {
		return Result{}, err
	}

	out, err := s.evaluator.Run(ctx, now, false)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Members:        out.Members,
		WeekStart:      start,
		WeekEnd:        end,
		TotalProcessed: out.TotalProcessed,
	}, nil
}
