package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeLectureSubmitted, Body: []byte(`{"subject":"Math"}`)}))
	require.NoError(t, q.Publish(ctx, Message{Type: TypeNotificationCreated, Body: []byte(`{}`)}))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, TypeLectureSubmitted, first.Type)
	assert.JSONEq(t, `{"subject":"Math"}`, string(first.Body))

	second := <-ch
	assert.Equal(t, TypeNotificationCreated, second.Type)
}

func TestInMemory_PublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: TypeLectureSubmitted}))

	// Buffer is full; a cancelled context must unblock the publisher.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, Message{Type: TypeLectureSubmitted})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemory_ConsumeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("consumer did not shut down")
	}
}
