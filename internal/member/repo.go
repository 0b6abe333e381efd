package member

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

// Sentinel errors for callers to branch on.
var (
	ErrNotFound  = errors.New("join request not found")
	ErrDuplicate = errors.New("join request already exists for email")
)

// Repository persists join requests.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a repo.
func NewRepository(col *mongo.Collection) *Repository {
	return &Repository{col: col}
}

// Insert writes a new pending request. Email uniqueness is enforced by the
// email_ci index.
func (r *Repository) Insert(ctx context.Context, req Request) (Request, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.EmailCI = strings.ToLower(req.Email)
	if req.Status == "" {
		req.Status = StatusPending
	}
	if _, err := r.col.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Request{}, ErrDuplicate
		}
		return Request{}, err
	}
	return req, nil
}

// GetByID fetches one request.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (Request, error) {
	var req Request
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// GetByEmail fetches one request by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Request, error) {
	var req Request
	err := r.col.FindOne(ctx, bson.M{"email_ci": strings.ToLower(email)}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// List returns requests, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status string) ([]Request, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	requests := []Request{}
	if err := cur.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// SetStatus transitions a request.
func (r *Repository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
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
