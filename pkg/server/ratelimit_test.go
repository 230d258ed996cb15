package server

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowLimit(t *testing.T) {
	mock := clock.NewMock()
	w := newSlidingWindow(mock, 10, time.Second)

	for i := 0; i < 10; i++ {
		assert.True(t, w.Allow("p1"), "event %d within limit", i)
	}
	assert.False(t, w.Allow("p1"), "11th event in the window must be rejected")
}

func TestSlidingWindowRolls(t *testing.T) {
	mock := clock.NewMock()
	w := newSlidingWindow(mock, 10, time.Second)

	for i := 0; i < 10; i++ {
		w.Allow("p1")
		mock.Add(50 * time.Millisecond)
	}
	// 500ms elapsed; window still holds all ten.
	assert.False(t, w.Allow("p1"))

	// Advance until the first events age out.
	mock.Add(600 * time.Millisecond)
	assert.True(t, w.Allow("p1"), "events older than the window free capacity")
}

func TestSlidingWindowPerKey(t *testing.T) {
	mock := clock.NewMock()
	w := newSlidingWindow(mock, 2, time.Second)

	assert.True(t, w.Allow("a"))
	assert.True(t, w.Allow("a"))
	assert.False(t, w.Allow("a"))
	assert.True(t, w.Allow("b"), "keys are independent")
}

func TestSlidingWindowForget(t *testing.T) {
	mock := clock.NewMock()
	w := newSlidingWindow(mock, 1, time.Second)

	w.Allow("p1")
	assert.False(t, w.Allow("p1"))
	w.Forget("p1")
	assert.True(t, w.Allow("p1"))
}
