package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/danielrjepsen/Nory-sub001/internal/domain/media"
)

// PhotoPageSize is the maximum number of photos requested per fetch
const PhotoPageSize = 100

// RawPhoto is a photo record as returned by the backend
type RawPhoto struct {
	ID               string     `json:"id"`
	FileName         string     `json:"fileName"`
	OriginalFileName string     `json:"originalFileName"`
	URL              string     `json:"url"`
	ImageURL         string     `json:"imageUrl"`
	ThumbnailURL     string     `json:"thumbnailUrl"`
	Type             string     `json:"type"`
	MimeType         string     `json:"mimeType"`
	ContentType      string     `json:"contentType"`
	CategoryID       *string    `json:"categoryId"`
	Duration         float64    `json:"duration"`
	UploadedAt       *time.Time `json:"uploadedAt"`
	CreatedAt        *time.Time `json:"createdAt"`
}

type photosResponse struct {
	Photos []RawPhoto `json:"photos"`
}

// FetchEventPhotos loads up to PhotoPageSize photos of an event, optionally
// restricted to a category, and normalizes them for presentation.
func (c *Client) FetchEventPhotos(ctx context.Context, eventID string, categoryID *string, preview bool) ([]media.Photo, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(PhotoPageSize))
	if categoryID != nil && *categoryID != "" {
		query.Set("categoryId", *categoryID)
	}
	if preview {
		query.Set("preview", "true")
	}

	body, err := c.get(ctx, eventPath(eventID, "photos"), query, false)
	if err != nil {
		return nil, err
	}

	var resp photosResponse
	if err := json.Unmarshal([]byte(unwrap(body, "data").Raw), &resp); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}

	raw := resp.Photos
	if len(raw) > PhotoPageSize {
		raw = raw[:PhotoPageSize]
	}
	return c.TransformPhotos(ctx, raw), nil
}

// TransformPhotos turns backend records into Photos. Records without an id or
// with an unresolvable URL are dropped.
func (c *Client) TransformPhotos(ctx context.Context, raw []RawPhoto) []media.Photo {
	return lo.FilterMap(raw, func(r RawPhoto, _ int) (media.Photo, bool) {
		if r.ID == "" {
			return media.Photo{}, false
		}

		ref := lo.Ternary(r.URL != "", r.URL, r.ImageURL)
		resolved, err := c.resolver.Resolve(ctx, ref)
		if err != nil {
			c.log.Warn("Dropping photo with unusable url", "photo_id", r.ID, "error", err)
			return media.Photo{}, false
		}

		thumb := ""
		if r.ThumbnailURL != "" {
			if t, err := c.resolver.Resolve(ctx, r.ThumbnailURL); err == nil {
				thumb = t
			}
		}

		name := lo.Ternary(r.OriginalFileName != "", r.OriginalFileName, r.FileName)
		mimeType := lo.Ternary(r.MimeType != "", r.MimeType, r.ContentType)
		uploadedAt := lo.Ternary(r.UploadedAt != nil, r.UploadedAt, r.CreatedAt)

		return media.Photo{
			ID:           r.ID,
			Name:         name,
			URL:          resolved,
			CategoryID:   r.CategoryID,
			Type:         media.Classify(media.Ref{Type: r.Type, MimeType: mimeType, Name: name, URL: ref}),
			MimeType:     mimeType,
			ThumbnailURL: thumb,
			Duration:     r.Duration,
			UploadedAt:   uploadedAt,
		}, true
	})
}

// UploadPhoto posts one file to the event as a multipart form
func (c *Client) UploadPhoto(ctx context.Context, eventID, fileName string, categoryID *string, content io.Reader) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy %s: %w", fileName, err)
	}
	if categoryID != nil && *categoryID != "" {
		if err := form.WriteField("categoryId", *categoryID); err != nil {
			return err
		}
	}
	if err := form.Close(); err != nil {
		return err
	}

	_, err = c.send(ctx, request{
		method:      http.MethodPost,
		path:        eventPath(eventID, "photos"),
		body:        buf.Bytes(),
		contentType: form.FormDataContentType(),
		auth:        true,
	})
	return err
}
