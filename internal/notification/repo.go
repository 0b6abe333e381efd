package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a notification does not exist or belongs to
// someone else.
var ErrNotFound = errors.New("notification not found")

// Repository persists notifications in the notifications collection.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a repo.
func NewRepository(col *mongo.Collection) *Repository {
	return &Repository{col: col}
}

// Insert writes a new notification. CreatedAt is stamped when unset.
func (r *Repository) Insert(ctx context.Context, n Notification) (Notification, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.Detail.StudentEmail = strings.ToLower(n.Detail.StudentEmail)
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ExistsForSubject reports whether an alert of the given type already exists
// for the (user, subject, student) tuple. Student email matching is
// case-insensitive; documents store it lowercased.
func (r *Repository) ExistsForSubject(ctx context.Context, userID primitive.ObjectID, typ, subject, studentEmail string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"user_id":              userID,
		"type":                 typ,
		"detail.subject":       subject,
		"detail.student_email": strings.ToLower(studentEmail),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteForSubject removes every alert of the given type matching the
// (user, subject, student) tuple. Returns the number deleted.
func (r *Repository) DeleteForSubject(ctx context.Context, userID primitive.ObjectID, typ, subject, studentEmail string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{
		"user_id":              userID,
		"type":                 typ,
		"detail.subject":       subject,
		"detail.student_email": strings.ToLower(studentEmail),
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notifications := []Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (r *Repository) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
