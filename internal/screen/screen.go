// Package screen decides which full-screen view the display shows.
package screen

import (
	"net/http"
	"strings"
)

// Kind is the screen the display presents
type Kind string

const (
	KindLoading  Kind = "loading"
	KindDraft    Kind = "draft"
	KindEnded    Kind = "ended"
	KindError    Kind = "error"
	KindNoPhotos Kind = "no_photos"
	KindLive     Kind = "live"
)

// Error codes the display understands on top of HTTP statuses
const (
	CodeDraft = "draft"
	CodeEnded = "ended"
)

// Input is everything the selector looks at
type Input struct {
	ErrorCode    string
	HTTPStatus   int
	EventPending bool
	HasPhotos    bool
	IsLoading    bool
	Preview      bool
}

// Screen is the selected view
type Screen struct {
	Kind    Kind   `json:"kind"`
	Preview bool   `json:"preview"`
	Message string `json:"message,omitempty"`
	Retry   bool   `json:"retry"`
	ShowQR  bool   `json:"showQr"`
}

// Select picks the screen. Explicit draft/ended codes come first, then 404
// errors, then the first load, then an empty photo set; everything else is
// the live slideshow. Preview is carried as an overlay flag.
func Select(in Input) Screen {
	s := Screen{Preview: in.Preview}

	switch NormalizeCode(in.ErrorCode) {
	case CodeDraft:
		s.Kind = KindDraft
		s.Message = "This event hasn't started yet"
		if in.Preview {
			s.Message = "Preview: this event is still a draft and only visible to organizers"
		}
		return s
	case CodeEnded:
		s.Kind = KindEnded
		s.Message = "This event has ended. Thanks for sharing the memories!"
		return s
	}

	if in.HTTPStatus == http.StatusNotFound {
		s.Kind = KindError
		s.Message = "Event not found"
		return s
	}

	if in.EventPending {
		s.Kind = KindLoading
		return s
	}

	if !in.HasPhotos && !in.IsLoading {
		s.Kind = KindNoPhotos
		s.Message = "No photos yet. Scan the code to share yours!"
		s.Retry = true
		s.ShowQR = true
		return s
	}

	s.Kind = KindLive
	s.ShowQR = true
	// soft failures keep the slideshow up but offer a manual retry
	s.Retry = in.HTTPStatus >= http.StatusBadRequest
	return s
}

// NormalizeCode maps backend error codes such as "EVENT_DRAFT" or
// "event_archived" onto CodeDraft and CodeEnded.
func NormalizeCode(code string) string {
	c := strings.ToLower(code)
	switch {
	case c == "":
		return ""
	case strings.Contains(c, "draft"), strings.Contains(c, "not_started"):
		return CodeDraft
	case strings.Contains(c, "ended"), strings.Contains(c, "archived"), strings.Contains(c, "expired"):
		return CodeEnded
	default:
		return c
	}
}
