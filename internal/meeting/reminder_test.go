package meeting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tutorhub/internal/mail"
)

type fakeReminderStore struct {
	due    []Meeting
	dueErr error
	marked []primitive.ObjectID
}

func (f *fakeReminderStore) DueForReminder(_ context.Context, _ time.Time, _ time.Duration) ([]Meeting, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.due, nil
}

func (f *fakeReminderStore) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	f.marked = append(f.marked, id)
	return nil
}

type flakyMailer struct {
	failFor map[string]bool
	sent    []mail.Message
}

func (m *flakyMailer) Send(_ context.Context, msg mail.Message) error {
	if m.failFor[msg.ToEmail] {
		return errors.New("smtp refused")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSweep_MailsEveryParticipantOnce(t *testing.T) {
	m := Meeting{
		ID:       primitive.NewObjectID(),
		Title:    "Weekly sync",
		Link:     "https://meet/x",
		StartsAt: time.Now().Add(2 * time.Hour),
		Participants: []Participant{
			{Name: "Sam", Email: "sam@x.com"},
			{Name: "Ana", Email: "ana@x.com"},
		},
	}
	store := &fakeReminderStore{due: []Meeting{m}}
	mailer := &flakyMailer{}

	reminded, err := NewReminder(store, mailer, time.Hour, zap.NewNop()).Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].Subject, "Weekly sync")
	require.Len(t, store.marked, 1)
	assert.Equal(t, m.ID, store.marked[0])
}

func TestSweep_SendFailureLeavesFlagUnsetForRetry(t *testing.T) {
	m := Meeting{
		ID:       primitive.NewObjectID(),
		Title:    "Weekly sync",
		StartsAt: time.Now().Add(2 * time.Hour),
		Participants: []Participant{
			{Name: "Sam", Email: "sam@x.com"},
			{Name: "Ana", Email: "ana@x.com"},
		},
	}
	store := &fakeReminderStore{due: []Meeting{m}}
	mailer := &flakyMailer{failFor: map[string]bool{"ana@x.com": true}}

	reminded, err := NewReminder(store, mailer, time.Hour, zap.NewNop()).Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, reminded)
	assert.Empty(t, store.marked, "a partially mailed meeting stays due for the next sweep")
}

func TestSweep_StoreFailurePropagates(t *testing.T) {
	store := &fakeReminderStore{dueErr: errors.New("cursor timeout")}

	_, err := NewReminder(store, &flakyMailer{}, time.Hour, zap.NewNop()).Sweep(context.Background(), time.Now())
	require.Error(t, err)
}
