package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the repositories.
const (
	ColVolunteers  = "volunteers"
	ColMemberships = "membership_requests"
	ColNotifs      = "notifications"
	ColReports     = "compliance_reports"
	ColMeetings    = "meetings"
)

// Mongo wraps the driver client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo connects to MongoDB with a short server-selection timeout.
func NewMongo(uri, name string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Mongo{Client: client, DB: client.Database(name)}, nil
}

// Collection returns a handle in the application database.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

// WithTransaction runs fn inside a single session transaction. All writes issued
// through the session context commit or roll back together.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the indexes the queries rely on. Safe to call on every start.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.Collection(ColVolunteers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email_ci", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = m.Collection(ColMemberships).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email_ci", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = m.Collection(ColNotifs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "detail.subject", Value: 1},
			{Key: "detail.student_email", Value: 1},
		},
	})
	if err != nil {
		return err
	}
	_, err = m.Collection(ColReports).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "week_start", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = m.Collection(ColMeetings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "starts_at", Value: 1}, {Key: "reminder_sent", Value: 1}},
	})
	return err
}

// Healthy verifies connectivity.
func (m *Mongo) Healthy(ctx context.Context) bool {
	if m == nil || m.Client == nil {
		return false
	}
	return m.Client.Ping(ctx, nil) == nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
