package slideshow

import (
	"fmt"
	"strings"
)

// State is the playback state of the presentation scheduler
type State byte

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateVideoPlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateVideoPlaying:
		return "video_playing"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *State) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	state, ok := StateFromString(str)
	if !ok {
		return fmt.Errorf("invalid slideshow state: %s", str)
	}
	*s = state
	return nil
}

// StateFromString converts a string to a State
func StateFromString(str string) (State, bool) {
	switch str {
	case "idle":
		return StateIdle, true
	case "loading":
		return StateLoading, true
	case "playing":
		return StatePlaying, true
	case "paused":
		return StatePaused, true
	case "video_playing":
		return StateVideoPlaying, true
	default:
		return StateIdle, false
	}
}

// CanTransitionTo reports whether the scheduler may move from s to next
func (s State) CanTransitionTo(next State) bool {
	if s == next {
		return true
	}
	switch s {
	case StateIdle:
		return next == StateLoading || next == StatePlaying || next == StatePaused
	case StateLoading:
		return next == StateIdle || next == StatePlaying || next == StatePaused
	case StatePlaying:
		return true
	case StatePaused:
		return next == StatePlaying || next == StateLoading || next == StateIdle
	case StateVideoPlaying:
		return next == StatePlaying || next == StatePaused || next == StateLoading || next == StateIdle
	default:
		return false
	}
}

// Advancing reports whether the timer may drive slide changes in s
func (s State) Advancing() bool {
	return s == StatePlaying
}
