// Package media holds the normalized media unit shown by the slideshow and the
// classifier that decides how it is played.
package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Type is the playback kind of a media item
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

// LoadingID identifies the placeholder shown while no photos are available
const LoadingID = "loading"

var videoExtensions = []string{
	".mp4", ".mov", ".webm", ".avi", ".mkv", ".m4v", ".3gp", ".ogv", ".wmv", ".flv", ".mpeg", ".mpg",
}

// Photo is a media item ready for presentation. Type is derived by Classify when
// the record is built and never changes afterwards.
type Photo struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	CategoryID   *string    `json:"categoryId"`
	Type         Type       `json:"type"`
	MimeType     string     `json:"mimeType,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Duration     float64    `json:"duration,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
}

// IsVideo reports whether the photo plays as a video
func (p Photo) IsVideo() bool {
	return p.Type == TypeVideo
}

// IsLoading reports whether p is the loading placeholder
func (p Photo) IsLoading() bool {
	return p.ID == LoadingID
}

func (p Photo) String() string {
	return fmt.Sprintf("%s(%s)", p.ID, p.Type)
}

// Loading returns the placeholder photo used when the sequence is empty
func Loading() Photo {
	return Photo{
		ID:   LoadingID,
		Name: "Loading",
		Type: TypeImage,
	}
}

// Ref is the subset of a media record the classifier looks at
type Ref struct {
	Type     string
	MimeType string
	Name     string
	URL      string
}

// Classify maps a media reference to image or video. An explicit type wins,
// then the MIME type prefix, then the file extension of the name or URL.
func Classify(ref Ref) Type {
	switch Type(strings.ToLower(strings.TrimSpace(ref.Type))) {
	case TypeVideo:
		return TypeVideo
	case TypeImage:
		return TypeImage
	}

	mime := strings.ToLower(strings.TrimSpace(ref.MimeType))
	if strings.HasPrefix(mime, "video/") {
		return TypeVideo
	}
	if strings.HasPrefix(mime, "image/") {
		return TypeImage
	}

	for _, candidate := range []string{ref.Name, ref.URL} {
		if isVideoFile(candidate) {
			return TypeVideo
		}
	}

	return TypeImage
}

func isVideoFile(name string) bool {
	if name == "" {
		return false
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return lo.Contains(videoExtensions, strings.ToLower(path.Ext(name)))
}
