package realtime

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/validation"
)

// Message types sent by screens
const (
	MsgMediaStarted = "media.started"
	MsgMediaEnded   = "media.ended"
	MsgMediaFailed  = "media.failed"
	MsgNext         = "control.next"
	MsgPrevious     = "control.previous"
	MsgToggle       = "control.toggle"
	MsgHeart        = "heart.send"
)

// Message types sent to screens
const (
	MsgFrame = "frame"
	MsgError = "error"
)

// Controller is what screens may drive over the socket
type Controller interface {
	VideoStarted(photoID string) bool
	VideoEnded(photoID string) bool
	MediaFailed(photoID, reason string) bool
	Next() bool
	Previous() bool
	TogglePlay() bool
	AddHeart(h feed.Heart) (feed.FloatingHeart, bool)
}

// Envelope wraps everything written to a screen
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Dispatch applies one screen message to ctrl
func Dispatch(ctrl Controller, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("invalid message format")
	}
	msg := gjson.ParseBytes(raw)
	photoID := msg.Get("photoId").String()

	switch t := msg.Get("type").String(); t {
	case MsgMediaStarted:
		ctrl.VideoStarted(photoID)
	case MsgMediaEnded:
		ctrl.VideoEnded(photoID)
	case MsgMediaFailed:
		ctrl.MediaFailed(photoID, msg.Get("reason").String())
	case MsgNext:
		ctrl.Next()
	case MsgPrevious:
		ctrl.Previous()
	case MsgToggle:
		ctrl.TogglePlay()
	case MsgHeart:
		h, err := ParseHeart(raw)
		if err != nil {
			return err
		}
		ctrl.AddHeart(h)
	default:
		return fmt.Errorf("unknown message type %q", t)
	}
	return nil
}

// ParseHeart reads a heart from a JSON payload. The id may be at the top
// level or under "heart".
func ParseHeart(raw []byte) (feed.Heart, error) {
	doc := gjson.ParseBytes(raw)
	if h := doc.Get("heart"); h.IsObject() {
		doc = h
	}

	heart := feed.Heart{
		ID:       doc.Get("id").String(),
		UserName: firstString(doc, "userName", "user", "name"),
	}
	if err := validation.ValidateID(heart.ID, "heart id"); err != nil {
		return feed.Heart{}, err
	}
	if err := validation.ValidateText(heart.UserName, validation.MaxNameLength, "userName"); err != nil {
		return feed.Heart{}, err
	}
	if ts := doc.Get("timestamp"); ts.Exists() {
		heart.Timestamp = parseTime(ts)
	}
	return heart, nil
}

// ParseActivity reads an activity from a JSON payload
func ParseActivity(raw []byte) (feed.Activity, error) {
	doc := gjson.ParseBytes(raw)
	if a := doc.Get("activity"); a.IsObject() {
		doc = a
	}

	a := feed.Activity{
		ID:       doc.Get("id").String(),
		Type:     feed.ActivityType(doc.Get("type").String()),
		UserName: firstString(doc, "userName", "user", "name"),
		Message:  doc.Get("message").String(),
	}
	if a.Message == "" && a.UserName == "" {
		return feed.Activity{}, fmt.Errorf("activity needs a message or user")
	}
	if err := validation.ValidateText(a.UserName, validation.MaxNameLength, "userName"); err != nil {
		return feed.Activity{}, err
	}
	if err := validation.ValidateText(a.Message, validation.MaxMessageLength, "message"); err != nil {
		return feed.Activity{}, err
	}
	if a.Message == "" {
		switch a.Type {
		case feed.ActivityUpload:
			a.Message = a.UserName + " shared a photo"
		case feed.ActivityJoin:
			a.Message = a.UserName + " joined"
		default:
			a.Message = a.UserName
		}
	}
	if ts := doc.Get("timestamp"); ts.Exists() {
		a.Timestamp = parseTime(ts)
	}
	return a, nil
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func parseTime(v gjson.Result) time.Time {
	if v.Type == gjson.Number {
		return time.UnixMilli(v.Int())
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}
