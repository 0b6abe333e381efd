package volunteer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors for callers to branch on.
var (
	ErrNotFound  = errors.New("volunteer not found")
	ErrDuplicate = errors.New("volunteer already exists")
)

// Repository persists volunteer documents.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a repo.
func NewRepository(col *mongo.Collection) *Repository {
	return &Repository{col: col}
}

// Insert writes a new volunteer. Email uniqueness is enforced by the
// email_ci index.
func (r *Repository) Insert(ctx context.Context, v Volunteer) (Volunteer, error) {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	v.EmailCI = strings.ToLower(v.Email)
	v.Normalize()

	if _, err := r.col.InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Volunteer{}, ErrDuplicate
		}
		return Volunteer{}, err
	}
	return v, nil
}

// GetByID fetches one volunteer.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (Volunteer, error) {
	var v Volunteer
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Volunteer{}, ErrNotFound
	}
	if err != nil {
		return Volunteer{}, err
	}
	v.Normalize()
	return v, nil
}

// GetByEmail fetches one volunteer by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Volunteer, error) {
	var v Volunteer
	err := r.col.FindOne(ctx, bson.M{"email_ci": strings.ToLower(email)}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Volunteer{}, ErrNotFound
	}
	if err != nil {
		return Volunteer{}, err
	}
	v.Normalize()
	return v, nil
}

// ListByRole returns all volunteers holding the given role.
func (r *Repository) ListByRole(ctx context.Context, role string) ([]Volunteer, error) {
	cur, err := r.col.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	volunteers := []Volunteer{}
	if err := cur.All(ctx, &volunteers); err != nil {
		return nil, err
	}
	for i := range volunteers {
		volunteers[i].Normalize()
	}
	return volunteers, nil
}

// ReplaceStudents swaps the student roster wholesale.
func (r *Repository) ReplaceStudents(ctx context.Context, id primitive.ObjectID, students []Student) error {
	if students == nil {
		students = []Student{}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"students":   students,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendLecture pushes a lecture and bumps the denormalized total.
func (r *Repository) AppendLecture(ctx context.Context, id primitive.ObjectID, lec Lecture) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"lectures": lec},
		"$inc":  bson.M{"lecture_count": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLowLectureCounter writes the rolling counter and its week guard. A nil
// lastWeek clears the guard.
func (r *Repository) SetLowLectureCounter(ctx context.Context, id primitive.ObjectID, count int, lastWeek *time.Time) error {
	set := bson.M{
		"low_lecture_week_count": count,
		"updated_at":             time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if lastWeek != nil {
		set["last_low_lecture_week"] = *lastWeek
	} else {
		update["$unset"] = bson.M{"last_low_lecture_week": ""}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
