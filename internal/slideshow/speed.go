package slideshow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Speed presets for image slides
const (
	SpeedFast   = 3 * time.Second
	SpeedNormal = 5 * time.Second
	SpeedSlow   = 10 * time.Second

	MinSpeed = 500 * time.Millisecond
	MaxSpeed = 5 * time.Minute
)

// ParseSpeed accepts a preset name ("fast", "normal", "slow"), a Go duration
// ("7s") or a bare number of milliseconds ("7000").
func ParseSpeed(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var d time.Duration
	switch s {
	case "fast":
		return SpeedFast, nil
	case "normal", "default":
		return SpeedNormal, nil
	case "slow":
		return SpeedSlow, nil
	case "":
		return 0, fmt.Errorf("speed is required")
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid speed %q", s)
		}
		d = parsed
	}

	if d < MinSpeed || d > MaxSpeed {
		return 0, fmt.Errorf("speed %s out of range [%s, %s]", d, MinSpeed, MaxSpeed)
	}
	return d, nil
}

// SpeedName returns the preset name for d, or its duration string
func SpeedName(d time.Duration) string {
	switch d {
	case SpeedFast:
		return "fast"
	case SpeedNormal:
		return "normal"
	case SpeedSlow:
		return "slow"
	default:
		return d.String()
	}
}
