package volunteer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tutorhub/internal/notification"
	"tutorhub/internal/queue"
)

// Validation errors surfaced to the HTTP layer.
var (
	ErrStudentExists  = errors.New("student email already on roster")
	ErrStudentMissing = errors.New("student not on roster")
	ErrInvalidLecture = errors.New("lecture name and subject are required")
	ErrInvalidStudent = errors.New("student name and email are required")
	ErrInvalidMinimum = errors.New("min lectures must not be negative")
)

// Store is the slice of the repository the service needs.
type Store interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (Volunteer, error)
	ReplaceStudents(ctx context.Context, id primitive.ObjectID, students []Student) error
	AppendLecture(ctx context.Context, id primitive.ObjectID, lec Lecture) error
}

// NotificationRetractor removes stale alerts when a lecture lands for the
// tuple they warn about.
type NotificationRetractor interface {
	DeleteForSubject(ctx context.Context, userID primitive.ObjectID, typ, subject, studentEmail string) (int64, error)
}

// Service coordinates roster management and lecture submission.
type Service struct {
	repo   Store
	notifs NotificationRetractor
	queue  queue.Queue
	logger *zap.Logger
}

// NewService creates a service.
func NewService(repo Store, notifs NotificationRetractor, q queue.Queue, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifs: notifs, queue: q, logger: logger}
}

// LectureSubmitted is the queue payload published after a submission.
type LectureSubmitted struct {
	VolunteerID  string `json:"volunteer_id"`
	LectureID    string `json:"lecture_id"`
	Subject      string `json:"subject"`
	StudentEmail string `json:"student_email,omitempty"`
}

// SubmitLecture records a delivered lecture. Any existing low-lecture alert
// for the exact (volunteer, subject, student) tuple is retracted eagerly; the
// next scheduled compliance run reconciles whether the count actually reached
// target.
func (s *Service) SubmitLecture(ctx context.Context, volunteerID primitive.ObjectID, name, link, subject, studentEmail string) (Lecture, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(subject) == "" {
		return Lecture{}, ErrInvalidLecture
	}

	lec := Lecture{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(name),
		Link:         strings.TrimSpace(link),
		Subject:      strings.TrimSpace(subject),
		StudentEmail: strings.ToLower(strings.TrimSpace(studentEmail)),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.AppendLecture(ctx, volunteerID, lec); err != nil {
		return Lecture{}, err
	}

	if lec.StudentEmail != "" {
		deleted, err := s.notifs.DeleteForSubject(ctx, volunteerID,
			notification.TypeLowLecturePerSubject, lec.Subject, lec.StudentEmail)
		if err != nil {
			s.logger.Warn("retracting low-lecture alerts failed",
				zap.String("volunteer", volunteerID.Hex()), zap.Error(err))
		} else if deleted > 0 {
			s.logger.Info("retracted low-lecture alerts",
				zap.String("volunteer", volunteerID.Hex()),
				zap.String("subject", lec.Subject),
				zap.Int64("count", deleted))
		}
	}

	body, _ := json.Marshal(LectureSubmitted{
		VolunteerID:  volunteerID.Hex(),
		LectureID:    lec.ID.Hex(),
		Subject:      lec.Subject,
		StudentEmail: lec.StudentEmail,
	})
	if err := s.queue.Publish(ctx, queue.Message{Type: queue.TypeLectureSubmitted, Body: body}); err != nil {
		s.logger.Warn("queue publish failed", zap.Error(err))
	}

	return lec, nil
}

// AddStudent appends a student to the roster, keeping emails unique
// case-insensitively.
func (s *Service) AddStudent(ctx context.Context, volunteerID primitive.ObjectID, st Student) (Volunteer, error) {
	if strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.Email) == "" {
		return Volunteer{}, ErrInvalidStudent
	}
	if err := validateAssignments(st.Subjects); err != nil {
		return Volunteer{}, err
	}

	v, err := s.repo.GetByID(ctx, volunteerID)
	if err != nil {
		return Volunteer{}, err
	}
	st.Email = strings.TrimSpace(st.Email)
	st.EmailCI = strings.ToLower(st.Email)
	if st.Subjects == nil {
		st.Subjects = []SubjectAssignment{}
	}
	for _, existing := range v.Students {
		if strings.EqualFold(existing.Email, st.Email) {
			return Volunteer{}, ErrStudentExists
		}
	}

	v.Students = append(v.Students, st)
	if err := s.repo.ReplaceStudents(ctx, volunteerID, v.Students); err != nil {
		return Volunteer{}, err
	}
	return v, nil
}

// RemoveStudent drops a student from the roster by email.
func (s *Service) RemoveStudent(ctx context.Context, volunteerID primitive.ObjectID, email string) error {
	v, err := s.repo.GetByID(ctx, volunteerID)
	if err != nil {
		return err
	}
	kept := v.Students[:0]
	found := false
	for _, st := range v.Students {
		if strings.EqualFold(st.Email, email) {
			found = true
			continue
		}
		kept = append(kept, st)
	}
	if !found {
		return ErrStudentMissing
	}
	return s.repo.ReplaceStudents(ctx, volunteerID, kept)
}

// SetStudentSubjects replaces a student's subject assignments.
func (s *Service) SetStudentSubjects(ctx context.Context, volunteerID primitive.ObjectID, studentEmail string, subjects []SubjectAssignment) error {
	if err := validateAssignments(subjects); err != nil {
		return err
	}
	v, err := s.repo.GetByID(ctx, volunteerID)
	if err != nil {
		return err
	}
	for i := range v.Students {
		if strings.EqualFold(v.Students[i].Email, studentEmail) {
			if subjects == nil {
				subjects = []SubjectAssignment{}
			}
			v.Students[i].Subjects = subjects
			return s.repo.ReplaceStudents(ctx, volunteerID, v.Students)
		}
	}
	return ErrStudentMissing
}

func validateAssignments(subjects []SubjectAssignment) error {
	for _, a := range subjects {
		if a.MinLectures < 0 {
			return ErrInvalidMinimum
		}
	}
	return nil
}
