package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kinds of notifications emitted by the platform.
const (
	TypeLowLecturePerSubject = "low_lecture_count_per_subject"
	TypeMeetingReminder      = "meeting_reminder"
)

// Detail is the structured payload attached to a low-lecture alert.
type Detail struct {
	Subject      string `bson:"subject,omitempty" json:"subject,omitempty"`
	StudentEmail string `bson:"student_email,omitempty" json:"student_email,omitempty"`
	Required     int    `bson:"required,omitempty" json:"required,omitempty"`
	Delivered    int    `bson:"delivered" json:"delivered"`
}

// Notification is one alert addressed to a volunteer.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Message   string             `bson:"message" json:"message"`
	Detail    Detail             `bson:"detail" json:"detail"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
