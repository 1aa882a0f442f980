package event

import (
	"fmt"
	"time"
)

// ViewingGracePeriod is how long an ended event stays viewable after EndsAt
const ViewingGracePeriod = 30 * 24 * time.Hour

// Event is the identity and status snapshot of an event as seen by the display
type Event struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	IsPublic  bool       `json:"isPublic"`
	IsPreview bool       `json:"isPreview"`
}

// IsViewable reports whether the slideshow may present the event at now.
// Live events always are; ended events stay viewable for ViewingGracePeriod.
func (e *Event) IsViewable(now time.Time) bool {
	switch e.Status {
	case StatusLive:
		return true
	case StatusEnded:
		if e.EndsAt == nil {
			return false
		}
		return now.Before(e.EndsAt.Add(ViewingGracePeriod))
	default:
		return false
	}
}

// Status represents the lifecycle status of an event
type Status byte

const (
	StatusDraft Status = iota
	StatusLive
	StatusEnded
	StatusArchived
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusLive:
		return "live"
	case StatusEnded:
		return "ended"
	case StatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Status) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	status, valid := StatusFromString(str)
	if !valid {
		return fmt.Errorf("invalid event status: %s", str)
	}
	*s = status
	return nil
}

// StatusFromString converts a string to a Status
func StatusFromString(s string) (Status, bool) {
	switch s {
	case "draft":
		return StatusDraft, true
	case "live", "active":
		return StatusLive, true
	case "ended":
		return StatusEnded, true
	case "archived":
		return StatusArchived, true
	default:
		return StatusDraft, false
	}
}
