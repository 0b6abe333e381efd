package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorhub/internal/notification"
	"tutorhub/internal/queue"
	"tutorhub/internal/volunteer"
)

type fakeTransactor struct {
	calls  int
	txErr  error
	commit bool
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	f.calls++
	if f.txErr != nil {
		return f.txErr
	}
	if err := fn(ctx); err != nil {
		return err
	}
	f.commit = true
	return nil
}

type fakeQueue struct {
	published []queue.Message
	pubErr    error
}

func (f *fakeQueue) Publish(_ context.Context, msg queue.Message) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeQueue) Consume(context.Context) (<-chan queue.Message, error) {
	ch := make(chan queue.Message)
	close(ch)
	return ch, nil
}

func TestRunner_PublishesAfterCommit(t *testing.T) {
	v := mathVolunteer("v@x.com")
	vols := &fakeVolunteerStore{volunteers: []volunteer.Volunteer{v}}
	ev := newTestEvaluator(vols, approved("v@x.com"), &fakeNotificationStore{existing: map[string]bool{}}, &fakeReportStore{})
	tx := &fakeTransactor{}
	q := &fakeQueue{}

	out, err := NewRunner(ev, tx, q, zap.NewNop()).RunScheduled(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 1, tx.calls)
	assert.True(t, tx.commit)
	require.Len(t, out.CreatedNotifications, 1)
	require.Len(t, q.published, 1)
	assert.Equal(t, queue.TypeNotificationCreated, q.published[0].Type)

	var n notification.Notification
	require.NoError(t, json.Unmarshal(q.published[0].Body, &n))
	assert.Equal(t, v.ID, n.UserID)
	assert.Equal(t, "Math", n.Detail.Subject)
}

func TestRunner_NoPublishOnFailure(t *testing.T) {
	v := mathVolunteer("v@x.com")
	vols := &fakeVolunteerStore{volunteers: []volunteer.Volunteer{v}}
	ev := newTestEvaluator(vols, approved("v@x.com"), &fakeNotificationStore{existing: map[string]bool{}}, &fakeReportStore{})
	tx := &fakeTransactor{txErr: errors.New("session start failed")}
	q := &fakeQueue{}

	_, err := NewRunner(ev, tx, q, zap.NewNop()).RunScheduled(context.Background(), testNow)
	require.Error(t, err)
	assert.Empty(t, q.published)
}

func TestRunner_PublishFailureDoesNotFailRun(t *testing.T) {
	v := mathVolunteer("v@x.com")
	vols := &fakeVolunteerStore{volunteers: []volunteer.Volunteer{v}}
	ev := newTestEvaluator(vols, approved("v@x.com"), &fakeNotificationStore{existing: map[string]bool{}}, &fakeReportStore{})
	q := &fakeQueue{pubErr: errors.New("broker down")}

	out, err := NewRunner(ev, &fakeTransactor{}, q, zap.NewNop()).RunScheduled(context.Background(), testNow)
	require.NoError(t, err, "a dead queue must not roll back a committed run")
	assert.NotNil(t, out.Report)
}
