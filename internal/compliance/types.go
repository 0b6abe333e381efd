package compliance

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/notification"
)

// UnderTargetSubject is one (subject, student) pair whose delivered count in
// the window fell short of its configured minimum.
type UnderTargetSubject struct {
	Name              string `bson:"name" json:"name"`
	MinLectures       int    `bson:"min_lectures" json:"minLectures"`
	DeliveredLectures int    `bson:"delivered_lectures" json:"deliveredLectures"`
}

// UnderTargetStudent groups a student's under-target subjects.
type UnderTargetStudent struct {
	StudentName         string               `bson:"student_name" json:"studentName"`
	StudentEmail        string               `bson:"student_email" json:"studentEmail"`
	AcademicLevel       string               `bson:"academic_level,omitempty" json:"academicLevel,omitempty"`
	UnderTargetSubjects []UnderTargetSubject `bson:"under_target_subjects" json:"underTargetSubjects"`
}

// LectureSummary mirrors the lecture fields exposed on query responses.
type LectureSummary struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Subject      string    `bson:"subject" json:"subject"`
	StudentEmail string    `bson:"student_email,omitempty" json:"studentEmail,omitempty"`
	Link         string    `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// MemberResult is one flagged volunteer with everything the admin view shows.
type MemberResult struct {
	ID                  string               `bson:"id" json:"id"`
	Name                string               `bson:"name" json:"name"`
	Email               string               `bson:"email" json:"email"`
	LowLectureWeekCount int                  `bson:"low_lecture_week_count" json:"lowLectureWeekCount"`
	UnderTargetStudents []UnderTargetStudent `bson:"under_target_students" json:"underTargetStudents"`
	Lectures            []LectureSummary     `bson:"lectures" json:"lectures"`
}

// Report is the immutable snapshot persisted once per scheduled run and
// looked up by week start on repeated reads.
type Report struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WeekStart      time.Time          `bson:"week_start" json:"weekStart"`
	WeekEnd        time.Time          `bson:"week_end" json:"weekEnd"`
	Results        []MemberResult     `bson:"results" json:"results"`
	TotalMembers   int                `bson:"total_members" json:"totalMembers"`
	FlaggedMembers int                `bson:"flagged_members" json:"flaggedMembers"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}

// Outcome is the result of one evaluation pass.
type Outcome struct {
	WeekStart      time.Time
	WeekEnd        time.Time
	TotalProcessed int
	Members        []MemberResult

	// Scheduled runs only.
	Report               *Report
	CreatedNotifications []notification.Notification
}
