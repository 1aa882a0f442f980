package feed

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	// MaxProcessedHearts bounds the dedup set. Above it the set is cleared,
	// which may let a burst replay an in-flight id.
	MaxProcessedHearts = 100

	heartRemovalBuffer = 500 * time.Millisecond
)

// Heart is a reaction sent by a guest
type Heart struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FloatingHeart is an accepted heart with its animation parameters
type FloatingHeart struct {
	Heart
	X        float64       `json:"x"`
	Delay    time.Duration `json:"delay"`
	Duration time.Duration `json:"duration"`
	Scale    float64       `json:"scale"`
}

// Lifetime is how long the heart stays in the visible set
func (h FloatingHeart) Lifetime() time.Duration {
	return h.Duration + h.Delay + heartRemovalBuffer
}

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type heartTimer struct {
	timer Timer
	seq   uint64
}

// HeartBuffer holds the hearts currently animating. Each id is animated at
// most once while it is in flight.
type HeartBuffer struct {
	mu        sync.Mutex
	visible   map[string]FloatingHeart
	processed map[string]struct{}
	timers    map[string]heartTimer
	seq       uint64
	rng       *rand.Rand
	afterFunc AfterFunc
	onChange  func()
	closed    bool
}

// HeartOption configures a HeartBuffer
type HeartOption func(*HeartBuffer)

// WithRand sets the random source for animation parameters
func WithRand(rng *rand.Rand) HeartOption {
	return func(b *HeartBuffer) { b.rng = rng }
}

// WithAfterFunc replaces the timer scheduler
func WithAfterFunc(f AfterFunc) HeartOption {
	return func(b *HeartBuffer) { b.afterFunc = f }
}

// WithOnChange registers a callback invoked after a heart expires
func WithOnChange(f func()) HeartOption {
	return func(b *HeartBuffer) { b.onChange = f }
}

// NewHeartBuffer creates an empty heart buffer
func NewHeartBuffer(opts ...HeartOption) *HeartBuffer {
	b := &HeartBuffer{
		visible:   make(map[string]FloatingHeart),
		processed: make(map[string]struct{}),
		timers:    make(map[string]heartTimer),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Accept starts animating h unless its id is already in flight. It returns the
// animation parameters and whether the heart was accepted.
func (b *HeartBuffer) Accept(h Heart) (FloatingHeart, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || h.ID == "" {
		return FloatingHeart{}, false
	}
	if _, seen := b.processed[h.ID]; seen {
		return FloatingHeart{}, false
	}

	if len(b.processed) >= MaxProcessedHearts {
		b.processed = make(map[string]struct{})
	}
	b.processed[h.ID] = struct{}{}

	fh := FloatingHeart{
		Heart:    h,
		X:        10 + b.rng.Float64()*80,
		Delay:    time.Duration(b.rng.Int63n(int64(500 * time.Millisecond))),
		Duration: 3*time.Second + time.Duration(b.rng.Int63n(int64(2*time.Second))),
		Scale:    0.8 + b.rng.Float64()*0.5,
	}
	b.visible[h.ID] = fh

	// the dedup set may have been cleared while this id was still animating
	if old, ok := b.timers[h.ID]; ok {
		old.timer.Stop()
	}

	b.seq++
	id, seq := h.ID, b.seq
	b.timers[id] = heartTimer{timer: b.afterFunc(fh.Lifetime(), func() { b.expire(id, seq) }), seq: seq}

	return fh, true
}

func (b *HeartBuffer) expire(id string, seq uint64) {
	b.mu.Lock()
	if t, ok := b.timers[id]; b.closed || !ok || t.seq != seq {
		b.mu.Unlock()
		return
	}
	delete(b.visible, id)
	delete(b.processed, id)
	delete(b.timers, id)
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Visible returns the hearts in flight ordered by submission time
func (b *HeartBuffer) Visible() []FloatingHeart {
	b.mu.Lock()
	out := lo.Values(b.visible)
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Processed returns the size of the dedup set
func (b *HeartBuffer) Processed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.processed)
}

// Close stops every pending removal timer
func (b *HeartBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, t := range b.timers {
		t.timer.Stop()
		delete(b.timers, id)
	}
}
