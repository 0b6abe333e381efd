package meeting

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a meeting does not exist or belongs to
// someone else.
var ErrNotFound = errors.New("meeting not found")

// Repository persists meetings.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a repo.
func NewRepository(col *mongo.Collection) *Repository {
	return &Repository{col: col}
}

// Insert writes a new meeting.
func (r *Repository) Insert(ctx context.Context, m Meeting) (Meeting, error) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Participants == nil {
		m.Participants = []Participant{}
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

// ListByOwner returns a volunteer's meetings, soonest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]Meeting, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	meetings := []Meeting{}
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// Update rewrites title, link, start time and participants of an owned meeting.
func (r *Repository) Update(ctx context.Context, ownerID, id primitive.ObjectID, m Meeting) error {
	if m.Participants == nil {
		m.Participants = []Participant{}
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"title":        m.Title,
			"link":         m.Link,
			"starts_at":    m.StartsAt,
			"participants": m.Participants,
			"updated_at":   time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an owned meeting.
func (r *Repository) Delete(ctx context.Context, ownerID, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DueForReminder returns meetings starting within the window from now that
// have not been reminded yet.
func (r *Repository) DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]Meeting, error) {
	cur, err := r.col.Find(ctx, bson.M{
		"reminder_sent": false,
		"starts_at": bson.M{
			"$gte": now,
			"$lte": now.Add(window),
		},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	meetings := []Meeting{}
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// MarkReminderSent flags a meeting so it is reminded at most once.
func (r *Repository) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now().UTC()}})
	return err
}
