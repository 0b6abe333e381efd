package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/auth"
	"tutorhub/internal/mail"
	"tutorhub/internal/volunteer"
)

// Workflow errors surfaced to the HTTP layer.
var (
	ErrInvalidRequest = errors.New("name and email are required")
	ErrNotPending     = errors.New("join request already decided")
)

// RequestStore is the slice of the repository the workflow needs.
type RequestStore interface {
	Insert(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Request, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// VolunteerCreator is the slice of the volunteer store approval needs.
type VolunteerCreator interface {
	Insert(ctx context.Context, v volunteer.Volunteer) (volunteer.Volunteer, error)
}

// Service runs the join-request workflow.
type Service struct {
	repo       RequestStore
	volunteers VolunteerCreator
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewService creates a service.
func NewService(repo RequestStore, volunteers VolunteerCreator, mailer mail.Mailer, logger *zap.Logger) *Service {
	return &Service{repo: repo, volunteers: volunteers, mailer: mailer, logger: logger}
}

// Submit files a new pending join request.
func (s *Service) Submit(ctx context.Context, name, email, phone, message string) (Request, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Request{}, ErrInvalidRequest
	}
	return s.repo.Insert(ctx, Request{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(phone),
		Message: strings.TrimSpace(message),
	})
}

// Approve transitions a pending request to approved, creates the volunteer
// account with a temporary password, and sends the welcome mail. A volunteer
// account that already exists for the email is tolerated so that a re-run of
// a half-completed approval converges.
func (s *Service) Approve(ctx context.Context, id primitive.ObjectID) (Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	tempPassword := uuid.NewString()[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return Request{}, err
	}

	_, err = s.volunteers.Insert(ctx, volunteer.Volunteer{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
	})
	if err != nil && !errors.Is(err, volunteer.ErrDuplicate) {
		return Request{}, err
	}

	if err := s.repo.SetStatus(ctx, id, StatusApproved); err != nil {
		return Request{}, err
	}
	req.Status = StatusApproved

	if err := s.mailer.Send(ctx, mail.Message{
		ToName:  req.Name,
		ToEmail: req.Email,
		Subject: "Welcome aboard",
		Body: fmt.Sprintf("Hi %s,\n\nYour join request was approved. "+
			"Log in with your email and the temporary password %s, then change it.\n", req.Name, tempPassword),
	}); err != nil {
		s.logger.Warn("welcome mail failed", zap.String("email", req.Email), zap.Error(err))
	}

	return req, nil
}

// Reject transitions a pending request to rejected.
func (s *Service) Reject(ctx context.Context, id primitive.ObjectID) (Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, ErrNotPending
	}
	if err := s.repo.SetStatus(ctx, id, StatusRejected); err != nil {
		return Request{}, err
	}
	req.Status = StatusRejected
	return req, nil
}
