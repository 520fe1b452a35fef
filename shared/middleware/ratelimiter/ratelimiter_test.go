package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(perMinute float64, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(perMinute, burst, time.Hour)
	l.now = clock.now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	t.Run("burst then deny", func(t *testing.T) {
		l, _ := newTestLimiter(60, 2)
		assert.True(t, l.Allow("user_1"))
		assert.True(t, l.Allow("user_1"))
		assert.False(t, l.Allow("user_1"))
	})

	t.Run("identities are independent", func(t *testing.T) {
		l, _ := newTestLimiter(60, 1)
		assert.True(t, l.Allow("user_1"))
		assert.False(t, l.Allow("user_1"))
		assert.True(t, l.Allow("user_2"))
	})

	t.Run("refills over time", func(t *testing.T) {
		l, clock := newTestLimiter(60, 1)
		assert.True(t, l.Allow("user_1"))
		assert.False(t, l.Allow("user_1"))

		clock.t = clock.t.Add(time.Second)
		assert.True(t, l.Allow("user_1"))
	})

	t.Run("does not exceed capacity", func(t *testing.T) {
		l, clock := newTestLimiter(60, 2)
		assert.True(t, l.Allow("user_1"))

		clock.t = clock.t.Add(time.Hour)
		assert.True(t, l.Allow("user_1"))
		assert.True(t, l.Allow("user_1"))
		assert.False(t, l.Allow("user_1"))
	})
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(60, 1)
	l.Allow("old")
	clock.t = clock.t.Add(2 * time.Hour)
	l.Allow("fresh")

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "fresh")
}
