package meeting

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting is a scheduled session between a volunteer and participants.
type Meeting struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title        string             `bson:"title" json:"title"`
	Link         string             `bson:"link,omitempty" json:"link,omitempty"`
	StartsAt     time.Time          `bson:"starts_at" json:"starts_at"`
	Participants []Participant      `bson:"participants" json:"participants"`
	ReminderSent bool               `bson:"reminder_sent" json:"reminder_sent"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Participant is an invitee on a meeting.
type Participant struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}
