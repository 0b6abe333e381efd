package httpmiddleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_ExhaustsAndRefills(t *testing.T) {
	l := NewSimpleTokenBucket(3, 60)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("1.2.3.4", now), "request %d should pass", i)
	}
	assert.False(t, l.allow("1.2.3.4", now))

	// One token refills after a second at 60/min.
	now = now.Add(time.Second)
	assert.True(t, l.allow("1.2.3.4", now))
	assert.False(t, l.allow("1.2.3.4", now))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := NewSimpleTokenBucket(1, 60)
	now := time.Now()

	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("b", now))
}

func TestAllow_RefillCapsAtCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(2, 600)
	now := time.Now()

	assert.True(t, l.allow("a", now))

	// A long pause refills far more than capacity; only two requests pass.
	now = now.Add(time.Hour)
	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
}

func TestMaybeEvict_DropsIdleBuckets(t *testing.T) {
	l := NewSimpleTokenBucket(1, 60)
	now := time.Now()

	l.allow("stale", now)
	assert.Len(t, l.state, 1)

	// Past the idle threshold the next caller triggers eviction.
	now = now.Add(11 * time.Minute)
	l.allow("fresh", now)
	_, staleKept := l.state["stale"]
	assert.False(t, staleKept)
	_, freshKept := l.state["fresh"]
	assert.True(t, freshKept)
}
