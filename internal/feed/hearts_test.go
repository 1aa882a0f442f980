package feed

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every pending, non-stopped timer
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	pending := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range pending {
		if !t.stopped {
			t.f()
		}
	}
}

func newTestHearts(opts ...HeartOption) (*HeartBuffer, *fakeScheduler) {
	sched := &fakeScheduler{}
	opts = append([]HeartOption{WithAfterFunc(sched.AfterFunc), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return NewHeartBuffer(opts...), sched
}

func TestHeartBuffer_Dedup(t *testing.T) {
	b, sched := newTestHearts()
	now := time.Now()

	_, ok := b.Accept(Heart{ID: "h1", Timestamp: now})
	require.True(t, ok)
	_, ok = b.Accept(Heart{ID: "h1", Timestamp: now})
	assert.False(t, ok)
	assert.Len(t, b.Visible(), 1)

	sched.fireAll()
	assert.Empty(t, b.Visible())
	assert.Zero(t, b.Processed())

	_, ok = b.Accept(Heart{ID: "h1", Timestamp: now.Add(5 * time.Second)})
	assert.True(t, ok, "an id is accepted again once its animation expired")
	assert.Len(t, b.Visible(), 1)
}

func TestHeartBuffer_AnimationParameters(t *testing.T) {
	b, sched := newTestHearts()

	for i := 0; i < 50; i++ {
		fh, ok := b.Accept(Heart{ID: fmt.Sprintf("h%d", i)})
		require.True(t, ok)
		assert.GreaterOrEqual(t, fh.X, 10.0)
		assert.LessOrEqual(t, fh.X, 90.0)
		assert.Less(t, fh.Delay, 500*time.Millisecond)
		assert.GreaterOrEqual(t, fh.Duration, 3*time.Second)
		assert.Less(t, fh.Duration, 5*time.Second)
		assert.GreaterOrEqual(t, fh.Scale, 0.8)
		assert.Less(t, fh.Scale, 1.3)
	}

	require.Len(t, sched.timers, 50)
	first := sched.timers[0]
	assert.Equal(t, first.d, b.Visible()[0].Lifetime())
}

func TestHeartBuffer_ProcessedSetHardClear(t *testing.T) {
	b, _ := newTestHearts()

	for i := 0; i < MaxProcessedHearts; i++ {
		_, ok := b.Accept(Heart{ID: fmt.Sprintf("h%d", i)})
		require.True(t, ok)
	}
	assert.Equal(t, MaxProcessedHearts, b.Processed())

	_, ok := b.Accept(Heart{ID: "overflow"})
	require.True(t, ok)
	assert.Equal(t, 1, b.Processed(), "the dedup set is cleared when it reaches its bound")

	// an id still animating can be replayed after the clear
	_, ok = b.Accept(Heart{ID: "h0"})
	assert.True(t, ok)
}

func TestHeartBuffer_ReplayedIDKeepsNewestAnimation(t *testing.T) {
	b, sched := newTestHearts()

	for i := 0; i < MaxProcessedHearts; i++ {
		b.Accept(Heart{ID: fmt.Sprintf("h%d", i)})
	}
	b.Accept(Heart{ID: "overflow"})
	_, ok := b.Accept(Heart{ID: "h0"})
	require.True(t, ok)

	// the first h0 timer was stopped; firing the rest must leave nothing behind
	sched.fireAll()
	assert.Empty(t, b.Visible())
}

func TestHeartBuffer_OnChangeAndClose(t *testing.T) {
	changes := 0
	b, sched := newTestHearts(WithOnChange(func() { changes++ }))

	b.Accept(Heart{ID: "a"})
	b.Accept(Heart{ID: "b"})
	b.Close()

	for _, tm := range sched.timers {
		assert.True(t, tm.stopped)
	}
	sched.fireAll()
	assert.Zero(t, changes)

	_, ok := b.Accept(Heart{ID: "c"})
	assert.False(t, ok)
}

func TestHeartBuffer_RejectsEmptyID(t *testing.T) {
	b, _ := newTestHearts()
	_, ok := b.Accept(Heart{})
	assert.False(t, ok)
}
