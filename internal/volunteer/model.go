package volunteer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubjectAssignment pairs a subject name with the weekly minimum of lectures
// expected for the student it is assigned to.
type SubjectAssignment struct {
	Name        string `bson:"name" json:"name"`
	MinLectures int    `bson:"min_lectures" json:"min_lectures"`
}

// Student is a tutee on a volunteer's roster. Email is unique within the
// roster, compared case-insensitively via the lowercased shadow field.
type Student struct {
	Name     string              `bson:"name" json:"name"`
	Email    string              `bson:"email" json:"email"`
	EmailCI  string              `bson:"email_ci" json:"-"`
	Phone    string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Grade    string              `bson:"grade,omitempty" json:"grade,omitempty"`
	Subjects []SubjectAssignment `bson:"subjects" json:"subjects"`
}

// Lecture is one delivered session. CreatedAt is authoritative for week
// bucketing; Subject is free text that only counts toward compliance when it
// matches a subject assignment exactly.
type Lecture struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Link         string             `bson:"link,omitempty" json:"link,omitempty"`
	Subject      string             `bson:"subject" json:"subject"`
	StudentEmail string             `bson:"student_email,omitempty" json:"student_email,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Volunteer is a tutor account. Students and Lectures are embedded; absent
// arrays decode to nil and are normalized to empty slices at the repository
// boundary so callers never check for presence.
//
// LowLectureWeekCount and LastLowLectureWeek belong to the compliance engine:
// the counter of weeks flagged under target and the week start it was last
// bumped for, guarding against double counting within one evaluation week.
type Volunteer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`

	Students []Student `bson:"students" json:"students"`
	// Subjects is the flat legacy list kept for older rosters; compliance
	// reads the per-student assignments instead.
	Subjects []string  `bson:"subjects,omitempty" json:"subjects,omitempty"`
	Lectures []Lecture `bson:"lectures" json:"lectures"`

	LectureCount        int        `bson:"lecture_count" json:"lecture_count"`
	LowLectureWeekCount int        `bson:"low_lecture_week_count" json:"low_lecture_week_count"`
	LastLowLectureWeek  *time.Time `bson:"last_low_lecture_week,omitempty" json:"last_low_lecture_week,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize replaces nil embedded slices with empty ones.
func (v *Volunteer) Normalize() {
	if v.Students == nil {
		v.Students = []Student{}
	}
	if v.Lectures == nil {
		v.Lectures = []Lecture{}
	}
	for i := range v.Students {
		if v.Students[i].Subjects == nil {
			v.Students[i].Subjects = []SubjectAssignment{}
		}
	}
}
