package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
)

// App is an app/plugin enabled on an event, such as the slideshow itself
type App struct {
	ID        string          `json:"id"`
	AppType   string          `json:"appType"`
	Name      string          `json:"name"`
	IsEnabled bool            `json:"isEnabled"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// FetchEventData loads the public event snapshot
func (c *Client) FetchEventData(ctx context.Context, eventID string, preview bool) (*event.Event, error) {
	query := url.Values{}
	if preview {
		query.Set("preview", strconv.FormatBool(preview))
	}

	body, err := c.get(ctx, "/api/v1/events/public/"+url.PathEscape(eventID), query, false)
	if err != nil {
		return nil, err
	}

	var ev event.Event
	if err := json.Unmarshal([]byte(unwrap(body, "data", "event").Raw), &ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	if ev.ID == "" {
		ev.ID = eventID
	}
	return &ev, nil
}

// FetchEventApps lists the apps configured on an event
func (c *Client) FetchEventApps(ctx context.Context, eventID string) ([]App, error) {
	body, err := c.get(ctx, eventPath(eventID, "apps"), nil, false)
	if err != nil {
		return nil, err
	}

	apps := []App{}
	raw := unwrap(body, "data", "apps")
	if !raw.IsArray() {
		return apps, nil
	}
	if err := json.Unmarshal([]byte(raw.Raw), &apps); err != nil {
		return nil, fmt.Errorf("decode apps: %w", err)
	}
	return apps, nil
}

// FetchEventTheme loads the event template, trying the public endpoint first
// and the authenticated one second. Every failure is swallowed: a nil theme
// means the caller uses the default.
func (c *Client) FetchEventTheme(ctx context.Context, eventID string) *event.Theme {
	theme, err := c.fetchTheme(ctx, "/api/v1/events/public/"+url.PathEscape(eventID)+"/template", false)
	if err == nil {
		return theme
	}
	if IsAbort(err) {
		return nil
	}
	c.log.Debug("Public template unavailable", "event_id", eventID, "error", err)

	if !tokenUsable(c.token, c.now()) {
		return nil
	}

	theme, err = c.fetchTheme(ctx, eventPath(eventID, "template"), true)
	if err != nil {
		c.log.Debug("Authenticated template unavailable", "event_id", eventID, "error", err)
		return nil
	}
	return theme
}

func (c *Client) fetchTheme(ctx context.Context, path string, auth bool) (*event.Theme, error) {
	body, err := c.get(ctx, path, nil, auth)
	if err != nil {
		return nil, err
	}

	raw := unwrap(body, "data", "template", "theme")
	var theme event.Theme
	if err := json.Unmarshal([]byte(raw.Raw), &theme); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if theme.PrimaryColor == "" {
		// templates may nest their palette under "colors"
		colors := raw.Get("colors")
		theme.PrimaryColor = colors.Get("primary").String()
		theme.SecondaryColor = colors.Get("secondary").String()
		theme.AccentColor = colors.Get("accent").String()
		theme.BackgroundColor = colors.Get("background").String()
		theme.TextColor = colors.Get("text").String()
	}
	if theme.PrimaryColor == "" {
		return nil, fmt.Errorf("template at %s has no palette", path)
	}
	return &theme, nil
}

// FetchEventCategories returns the photo categories ordered by SortOrder
func (c *Client) FetchEventCategories(ctx context.Context, eventID string) ([]event.Category, error) {
	body, err := c.get(ctx, eventPath(eventID, "photos", "categories"), nil, false)
	if err != nil {
		return nil, err
	}

	if success := gjson.GetBytes(body, "success"); success.Exists() && !success.Bool() {
		return nil, &APIError{Status: 200, Message: errorMessage(body, 200)}
	}

	categories := []event.Category{}
	raw := gjson.GetBytes(body, "categories")
	if raw.IsArray() {
		if err := json.Unmarshal([]byte(raw.Raw), &categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	}

	categories = lo.Filter(categories, func(cat event.Category, _ int) bool { return cat.ID != "" })
	event.SortCategories(categories)
	return categories, nil
}

// unwrap returns the first of the wrapper keys present in body, or the whole
// document when the payload is not wrapped.
func unwrap(body []byte, keys ...string) gjson.Result {
	doc := gjson.ParseBytes(body)
	for _, key := range keys {
		if inner := doc.Get(key); inner.IsObject() || inner.IsArray() {
			return inner
		}
	}
	return doc
}
