package slideshow

import (
	"time"

	"github.com/danielrjepsen/Nory-sub001/internal/ambient"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/screen"
)

// View is everything a display needs to draw one frame
type View struct {
	EventID     string               `json:"eventId"`
	Event       *event.Event         `json:"event,omitempty"`
	Theme       event.Theme          `json:"theme"`
	Categories  []event.Category     `json:"categories"`
	Screen      screen.Screen        `json:"screen"`
	Playback    Snapshot             `json:"playback"`
	Activities  feed.ActivityView    `json:"activities"`
	Hearts      []feed.FloatingHeart `json:"hearts"`
	Ambient     ambient.State        `json:"ambient"`
	Online      bool                 `json:"online"`
	ShowQR      bool                 `json:"showQr"`
	RemoteURL   string               `json:"remoteUrl"`
	Error       *FetchError          `json:"error,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// View captures the current presentation state
func (e *Engine) View() View {
	now := e.now()

	e.mu.Lock()
	v := View{
		EventID:     e.opts.EventID,
		Event:       e.event,
		Theme:       e.theme,
		Categories:  append([]event.Category(nil), e.categories...),
		Playback:    e.sched.Snapshot(),
		Online:      e.online,
		RemoteURL:   e.opts.RemoteURL,
		GeneratedAt: now,
	}
	in := e.screenInputLocked(now)
	v.Error = e.eventErr
	if v.Error == nil {
		v.Error = e.photosErr
	}
	showQR := e.showQR
	e.mu.Unlock()

	v.Screen = screen.Select(in)
	v.ShowQR = showQR && v.Screen.ShowQR && v.RemoteURL != ""
	v.Activities = e.activities.View(now)
	v.Hearts = e.hearts.Visible()
	v.Ambient = e.ambient.Snapshot()
	return v
}

func (e *Engine) screenInputLocked(now time.Time) screen.Input {
	in := screen.Input{
		EventPending: e.eventPending && e.eventErr == nil,
		HasPhotos:    e.sched.Len() > 0,
		IsLoading:    e.photosPending() || e.sched.State() == StateLoading,
		Preview:      e.opts.Preview,
	}

	switch {
	case e.eventErr != nil:
		in.ErrorCode = e.eventErr.Code
		in.HTTPStatus = e.eventErr.Status
	case e.photosErr != nil:
		in.HTTPStatus = e.photosErr.Status
	}

	if in.ErrorCode == "" && e.event != nil && !e.event.IsViewable(now) {
		switch e.event.Status {
		case event.StatusDraft:
			in.ErrorCode = screen.CodeDraft
		case event.StatusEnded, event.StatusArchived:
			in.ErrorCode = screen.CodeEnded
		}
	}
	return in
}

// photosPending reports whether the first photo fetch has not completed yet.
// Background polls never count as loading.
func (e *Engine) photosPending() bool {
	return !e.photosLoaded && e.photosErr == nil
}
