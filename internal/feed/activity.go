// Package feed keeps the short-lived UI events shown over the slideshow: the
// activity ticker and floating heart reactions.
package feed

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	// ActivityCapacity is how many activities are retained
	ActivityCapacity = 20
	// ActivityDisplayLimit is how many activities are shown at once
	ActivityDisplayLimit = 4
	// ActivityExpiry is how long an activity stays eligible for display
	ActivityExpiry = 2 * time.Minute
)

// ActivityType classifies an activity entry
type ActivityType string

const (
	ActivityUpload       ActivityType = "upload"
	ActivityJoin         ActivityType = "join"
	ActivityMessage      ActivityType = "message"
	ActivitySystem       ActivityType = "system"
	ActivityMediaFailure ActivityType = "media_failure"
)

// Activity is one entry of the activity feed
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	UserName  string       `json:"userName,omitempty"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// ActivityView is the displayable part of the feed
type ActivityView struct {
	Visible  []Activity `json:"visible"`
	Overflow int        `json:"overflow"`
}

// ActivityBuffer retains the most recent activities. Storage keeps more
// entries than are displayed so the overflow badge can be counted.
type ActivityBuffer struct {
	mu    sync.Mutex
	items []Activity
	now   func() time.Time
}

// NewActivityBuffer creates an empty buffer
func NewActivityBuffer() *ActivityBuffer {
	return &ActivityBuffer{now: time.Now}
}

// Add appends an activity, stamping its id and time when missing, and drops
// the oldest entries beyond ActivityCapacity.
func (b *ActivityBuffer) Add(a Activity) Activity {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Type == "" {
		a.Type = ActivityMessage
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// future stamps from skewed clocks would outlive ActivityExpiry
	if now := b.now(); a.Timestamp.IsZero() || a.Timestamp.After(now) {
		a.Timestamp = now
	}

	b.items = append(b.items, a)
	if overflow := len(b.items) - ActivityCapacity; overflow > 0 {
		b.items = append([]Activity(nil), b.items[overflow:]...)
	}
	return a
}

// Len returns the number of stored activities
func (b *ActivityBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// View returns the unexpired activities in ascending time order, limited to the
// newest ActivityDisplayLimit, with the number of hidden ones.
func (b *ActivityBuffer) View(now time.Time) ActivityView {
	b.mu.Lock()
	fresh := lo.Filter(b.items, unexpired(now))
	b.mu.Unlock()

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Timestamp.Before(fresh[j].Timestamp)
	})

	view := ActivityView{Visible: fresh}
	if len(fresh) > ActivityDisplayLimit {
		view.Overflow = len(fresh) - ActivityDisplayLimit
		view.Visible = fresh[view.Overflow:]
	}
	return view
}

// Prune drops expired activities from storage and reports whether any were removed
func (b *ActivityBuffer) Prune(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := lo.Filter(b.items, unexpired(now))
	removed := len(kept) != len(b.items)
	b.items = kept
	return removed
}

func unexpired(now time.Time) func(Activity, int) bool {
	return func(a Activity, _ int) bool {
		return now.Sub(a.Timestamp) < ActivityExpiry
	}
}
