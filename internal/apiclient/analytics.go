package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

type trackRequest struct {
	EventType  string         `json:"eventType"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Track records an analytics event without blocking the caller. Failures are
// logged and otherwise ignored.
func (c *Client) Track(eventID, eventType string, properties map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.TrackSync(ctx, eventID, eventType, properties); err != nil {
			c.log.Debug("Analytics event dropped", "event_id", eventID, "type", eventType, "error", err)
		}
	}()
}

// TrackSync sends one analytics event with a single attempt
func (c *Client) TrackSync(ctx context.Context, eventID, eventType string, properties map[string]any) error {
	payload, err := json.Marshal(trackRequest{
		EventType:  eventType,
		Properties: properties,
		Timestamp:  c.now().UTC(),
	})
	if err != nil {
		return err
	}

	_, err = c.sendOnce(ctx, request{
		method:      http.MethodPost,
		path:        "/api/v1/analytics/events/" + url.PathEscape(eventID) + "/track",
		body:        payload,
		contentType: "application/json",
	})
	return err
}
