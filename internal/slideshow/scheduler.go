package slideshow

import (
	"time"

	"github.com/danielrjepsen/Nory-sub001/internal/domain/media"
)

const (
	// ManualDebounce is the quiet window after a manual navigation during
	// which timer-driven advances are ignored.
	ManualDebounce = 800 * time.Millisecond
	// PostVideoDelay is the pause between a video ending and the next slide.
	PostVideoDelay = 1000 * time.Millisecond
)

// Cause describes why the current slide changed
type Cause string

const (
	CauseTimer    Cause = "timer"
	CauseVideoEnd Cause = "video_end"
	CauseManual   Cause = "manual"
	CauseFailure  Cause = "media_failure"
)

// Scheduler is the presentation state machine. It owns the photo sequence
// and the current index; every mutation goes through its methods. It has no
// clock or timers of its own: callers pass now and arm a timer at Deadline.
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	state      State
	photos     []media.Photo
	index      int
	speed      time.Duration
	categoryID *string

	holdPaused  bool
	anchor      time.Time
	lastManual  time.Time
	postVideoAt time.Time
	failed      map[string]struct{}
}

// NewScheduler creates an idle scheduler advancing images every speed
func NewScheduler(speed time.Duration) *Scheduler {
	if speed <= 0 {
		speed = SpeedNormal
	}
	return &Scheduler{
		state:  StateIdle,
		speed:  speed,
		failed: make(map[string]struct{}),
	}
}

func (s *Scheduler) State() State { return s.state }

func (s *Scheduler) Index() int { return s.index }

func (s *Scheduler) Len() int { return len(s.photos) }

func (s *Scheduler) Speed() time.Duration { return s.speed }

func (s *Scheduler) CategoryID() *string { return s.categoryID }


// Failed reports whether the photo was skipped after a playback failure
func (s *Scheduler) Failed(id string) bool {
	_, ok := s.failed[id]
	return ok
}

// Photos returns a copy of the current sequence
func (s *Scheduler) Photos() []media.Photo {
	return append([]media.Photo(nil), s.photos...)
}

// Current returns the photo at the current index, or the loading sentinel
// when there are no photos.
func (s *Scheduler) Current() media.Photo {
	if len(s.photos) == 0 {
		return media.Loading()
	}
	return s.photos[s.index]
}

func (s *Scheduler) to(next State) bool {
	if !s.state.CanTransitionTo(next) {
		return false
	}
	s.state = next
	return true
}

func (s *Scheduler) resumeState() State {
	if s.holdPaused {
		return StatePaused
	}
	return StatePlaying
}

// SetPhotos replaces the sequence with a fresh fetch result. The index is
// kept when it still fits and reset to 0 otherwise. A video keeps playing
// only if it is still the current photo.
func (s *Scheduler) SetPhotos(photos []media.Photo, now time.Time) {
	prevID := s.Current().ID
	s.photos = append([]media.Photo(nil), photos...)
	if s.index >= len(s.photos) || s.index < 0 {
		s.index = 0
	}
	s.pruneFailed()

	if len(s.photos) == 0 {
		s.postVideoAt = time.Time{}
		s.to(StateIdle)
		return
	}

	switch s.state {
	case StateIdle, StateLoading:
		s.to(s.resumeState())
		s.enterSlide(now)
	default:
		if s.Current().ID != prevID {
			s.enterSlide(now)
		}
	}
}

// BeginCategory switches the category filter. The sequence is emptied and
// the scheduler enters Loading until SetPhotos delivers the new list.
func (s *Scheduler) BeginCategory(categoryID *string) {
	s.categoryID = categoryID
	s.photos = nil
	s.index = 0
	s.postVideoAt = time.Time{}
	s.failed = make(map[string]struct{})
	s.to(StateLoading)
}

// Next moves to the following photo, wrapping at the end
func (s *Scheduler) Next(now time.Time) bool {
	if len(s.photos) == 0 {
		return false
	}
	s.lastManual = now
	s.index = s.step(1)
	s.enterSlide(now)
	return true
}

// Previous moves to the preceding photo, wrapping at the start
func (s *Scheduler) Previous(now time.Time) bool {
	if len(s.photos) == 0 {
		return false
	}
	s.lastManual = now
	s.index = s.step(-1)
	s.enterSlide(now)
	return true
}

// Pause stops automatic advancing. A pause requested while loading is
// remembered and applied once photos arrive.
func (s *Scheduler) Pause() bool {
	changed := !s.holdPaused
	s.holdPaused = true
	switch s.state {
	case StatePlaying, StateVideoPlaying:
		return s.to(StatePaused)
	}
	return changed
}

// Play resumes automatic advancing with a full interval for the current slide
func (s *Scheduler) Play(now time.Time) bool {
	changed := s.holdPaused
	s.holdPaused = false
	if s.state != StatePaused {
		return changed
	}
	s.to(StatePlaying)
	s.anchor = now
	if !s.postVideoAt.IsZero() {
		s.postVideoAt = now.Add(PostVideoDelay)
	}
	return true
}

// TogglePlay flips between Playing and Paused
func (s *Scheduler) TogglePlay(now time.Time) bool {
	if s.holdPaused {
		return s.Play(now)
	}
	return s.Pause()
}

// SetSpeed changes the image interval and restarts it for the current slide
func (s *Scheduler) SetSpeed(speed time.Duration, now time.Time) bool {
	if speed <= 0 || speed == s.speed {
		return false
	}
	s.speed = speed
	s.anchor = now
	return true
}

// VideoStarted suspends timer advances while the current video plays
func (s *Scheduler) VideoStarted(photoID string) bool {
	cur := s.Current()
	if len(s.photos) == 0 || cur.ID != photoID || !cur.IsVideo() {
		return false
	}
	if s.state != StatePlaying {
		return false
	}
	s.postVideoAt = time.Time{}
	return s.to(StateVideoPlaying)
}

// VideoEnded schedules the advance PostVideoDelay after the current video
// finished. While paused the advance waits for Play.
func (s *Scheduler) VideoEnded(photoID string, now time.Time) bool {
	if len(s.photos) == 0 || s.Current().ID != photoID {
		return false
	}
	if s.state == StateVideoPlaying {
		s.to(StatePlaying)
	}
	s.postVideoAt = now.Add(PostVideoDelay)
	return true
}

// MediaFailed skips a photo that could not be displayed. The photo is not
// retried until it drops out of the sequence or the category changes.
func (s *Scheduler) MediaFailed(photoID string, now time.Time) bool {
	if len(s.photos) == 0 || s.Current().ID != photoID {
		return false
	}
	s.failed[photoID] = struct{}{}

	next, ok := s.playable(s.index, 1)
	if !ok {
		if s.state == StateVideoPlaying {
			s.to(StatePlaying)
		}
		s.postVideoAt = time.Time{}
		return false
	}
	s.index = next
	s.enterSlide(now)
	return true
}

// Deadline returns when the next timer-driven advance is due. It reports
// false while paused, loading, empty or showing a video.
func (s *Scheduler) Deadline() (time.Time, bool) {
	if !s.state.Advancing() || len(s.photos) == 0 {
		return time.Time{}, false
	}
	if !s.postVideoAt.IsZero() {
		return s.postVideoAt, true
	}
	if s.Current().IsVideo() {
		return time.Time{}, false
	}
	due := s.anchor.Add(s.speed)
	if quiet := s.lastManual.Add(ManualDebounce); quiet.After(due) {
		due = quiet
	}
	return due, true
}

// Fire is the timer callback. It advances only if an advance is actually
// due at now; stale or early callbacks leave the state untouched.
func (s *Scheduler) Fire(now time.Time) (Cause, bool) {
	if !s.state.Advancing() || len(s.photos) == 0 {
		return "", false
	}
	if now.Sub(s.lastManual) < ManualDebounce {
		return "", false
	}

	cause := CauseTimer
	if !s.postVideoAt.IsZero() {
		if now.Before(s.postVideoAt) {
			return "", false
		}
		cause = CauseVideoEnd
	} else {
		if s.Current().IsVideo() {
			return "", false
		}
		if now.Before(s.anchor.Add(s.speed)) {
			return "", false
		}
	}

	s.index = s.step(1)
	s.enterSlide(now)
	return cause, true
}

func (s *Scheduler) enterSlide(now time.Time) {
	s.anchor = now
	s.postVideoAt = time.Time{}
	if s.state == StateVideoPlaying {
		s.to(StatePlaying)
	}
}

// step moves one position in dir, skipping failed photos when possible
func (s *Scheduler) step(dir int) int {
	if i, ok := s.playable(s.index, dir); ok {
		return i
	}
	n := len(s.photos)
	return ((s.index+dir)%n + n) % n
}

// playable finds the nearest index from from in dir whose photo has not failed
func (s *Scheduler) playable(from, dir int) (int, bool) {
	n := len(s.photos)
	for k := 1; k <= n; k++ {
		i := ((from+dir*k)%n + n) % n
		if _, bad := s.failed[s.photos[i].ID]; !bad {
			return i, true
		}
	}
	return from, false
}

func (s *Scheduler) pruneFailed() {
	if len(s.failed) == 0 {
		return
	}
	present := make(map[string]struct{}, len(s.photos))
	for _, p := range s.photos {
		present[p.ID] = struct{}{}
	}
	for id := range s.failed {
		if _, ok := present[id]; !ok {
			delete(s.failed, id)
		}
	}
}

// Snapshot is a read-only view of the scheduler
type Snapshot struct {
	State      State       `json:"state"`
	Index      int         `json:"index"`
	Total      int         `json:"total"`
	Current    media.Photo `json:"current"`
	SpeedMS    int64       `json:"speedMs"`
	Speed      string      `json:"speed"`
	CategoryID *string     `json:"categoryId"`
	Paused     bool        `json:"paused"`
	Skipped    int         `json:"skipped"`
	NextAt     *time.Time  `json:"nextAt,omitempty"`
}

// Snapshot captures the current playback position
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Index:      s.index,
		Total:      len(s.photos),
		Current:    s.Current(),
		SpeedMS:    s.speed.Milliseconds(),
		Speed:      SpeedName(s.speed),
		CategoryID: s.categoryID,
		Paused:     s.holdPaused,
		Skipped:    len(s.failed),
	}
	if due, ok := s.Deadline(); ok {
		snap.NextAt = &due
	}
	return snap
}
