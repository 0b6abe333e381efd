package compliance

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository persists weekly snapshots in the compliance_reports
// collection. Reports are append-only; nothing ever updates or deletes them.
type ReportRepository struct {
	col *mongo.Collection
}

var _ ReportStore = (*ReportRepository)(nil)

// NewReportRepository creates a repo.
func NewReportRepository(col *mongo.Collection) *ReportRepository {
	return &ReportRepository{col: col}
}

// Insert writes one snapshot.
func (r *ReportRepository) Insert(ctx context.Context, report Report) (Report, error) {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.Results == nil {
		report.Results = []MemberResult{}
	}
	if _, err := r.col.InsertOne(ctx, report); err != nil {
		return Report{}, err
	}
	return report, nil
}

// FindByWeekStart returns the most recent snapshot for the exact week start,
// or ErrReportNotFound.
func (r *ReportRepository) FindByWeekStart(ctx context.Context, weekStart time.Time) (Report, error) {
	var report Report
	err := r.col.FindOne(ctx,
		bson.M{"week_start": weekStart},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Report{}, ErrReportNotFound
	}
	if err != nil {
		return Report{}, err
	}
	if report.Results == nil {
		report.Results = []MemberResult{}
	}
	return report, nil
}
