package member

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/auth"
	"tutorhub/internal/mail"
	"tutorhub/internal/volunteer"
)

type fakeRequestStore struct {
	requests map[primitive.ObjectID]Request
	statuses map[primitive.ObjectID]string
}

func newFakeRequestStore(reqs ...Request) *fakeRequestStore {
	f := &fakeRequestStore{
		requests: map[primitive.ObjectID]Request{},
		statuses: map[primitive.ObjectID]string{},
	}
	for _, r := range reqs {
		f.requests[r.ID] = r
	}
	return f
}

func (f *fakeRequestStore) Insert(_ context.Context, req Request) (Request, error) {
	req.ID = primitive.NewObjectID()
	req.Status = StatusPending
	req.EmailCI = strings.ToLower(req.Email)
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id primitive.ObjectID) (Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (f *fakeRequestStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	req, ok := f.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	f.requests[id] = req
	f.statuses[id] = status
	return nil
}

type fakeVolunteerCreator struct {
	inserted  []volunteer.Volunteer
	insertErr error
}

func (f *fakeVolunteerCreator) Insert(_ context.Context, v volunteer.Volunteer) (volunteer.Volunteer, error) {
	if f.insertErr != nil {
		return volunteer.Volunteer{}, f.insertErr
	}
	v.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, v)
	return v, nil
}

func newTestService(repo *fakeRequestStore, vols *fakeVolunteerCreator, mailer mail.Mailer) *Service {
	return NewService(repo, vols, mailer, zap.NewNop())
}

func TestSubmit(t *testing.T) {
	repo := newFakeRequestStore()
	svc := newTestService(repo, &fakeVolunteerCreator{}, mail.NewConsole(zap.NewNop()))

	req, err := svc.Submit(context.Background(), "  Jo  ", " jo@x.com ", "555", "let me in")
	require.NoError(t, err)
	assert.Equal(t, "Jo", req.Name)
	assert.Equal(t, "jo@x.com", req.Email)
	assert.Equal(t, StatusPending, req.Status)

	_, err = svc.Submit(context.Background(), "", "jo@x.com", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.Submit(context.Background(), "Jo", "   ", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestApprove_CreatesVolunteerAndMails(t *testing.T) {
	pending := Request{ID: primitive.NewObjectID(), Name: "Jo", Email: "jo@x.com", Status: StatusPending}
	repo := newFakeRequestStore(pending)
	vols := &fakeVolunteerCreator{}
	mailer := mail.NewConsole(zap.NewNop())

	got, err := newTestService(repo, vols, mailer).Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, StatusApproved, repo.statuses[pending.ID])

	require.Len(t, vols.inserted, 1)
	created := vols.inserted[0]
	assert.Equal(t, "jo@x.com", created.Email)
	assert.Equal(t, auth.RoleUser, created.Role)
	assert.NotEmpty(t, created.PasswordHash)
	// The stored hash is bcrypt, never the raw temporary password.
	_, err = bcrypt.Cost([]byte(created.PasswordHash))
	assert.NoError(t, err)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "jo@x.com", sent[0].ToEmail)
	assert.Contains(t, sent[0].Body, "temporary password")
}

func TestApprove_ToleratesExistingVolunteer(t *testing.T) {
	pending := Request{ID: primitive.NewObjectID(), Name: "Jo", Email: "jo@x.com", Status: StatusPending}
	repo := newFakeRequestStore(pending)
	vols := &fakeVolunteerCreator{insertErr: volunteer.ErrDuplicate}

	got, err := newTestService(repo, vols, mail.NewConsole(zap.NewNop())).Approve(context.Background(), pending.ID)
	require.NoError(t, err, "a re-run of a half-completed approval must converge")
	assert.Equal(t, StatusApproved, got.Status)
}

func TestApprove_RejectsDecidedRequest(t *testing.T) {
	decided := Request{ID: primitive.NewObjectID(), Name: "Jo", Email: "jo@x.com", Status: StatusApproved}
	repo := newFakeRequestStore(decided)
	vols := &fakeVolunteerCreator{}

	_, err := newTestService(repo, vols, mail.NewConsole(zap.NewNop())).Approve(context.Background(), decided.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Empty(t, vols.inserted)
}

func TestReject(t *testing.T) {
	pending := Request{ID: primitive.NewObjectID(), Name: "Jo", Email: "jo@x.com", Status: StatusPending}
	repo := newFakeRequestStore(pending)
	svc := newTestService(repo, &fakeVolunteerCreator{}, mail.NewConsole(zap.NewNop()))

	got, err := svc.Reject(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)

	_, err = svc.Reject(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}
