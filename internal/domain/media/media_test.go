package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want Type
	}{
		{"explicit video wins over image extension", Ref{Type: "video", Name: "a.png"}, TypeVideo},
		{"explicit image wins over video mime", Ref{Type: "image", MimeType: "video/mp4"}, TypeImage},
		{"unknown explicit type is ignored", Ref{Type: "gif", MimeType: "video/webm"}, TypeVideo},
		{"video mime", Ref{MimeType: "video/quicktime", Name: "clip"}, TypeVideo},
		{"image mime beats video extension", Ref{MimeType: "image/jpeg", Name: "odd.mp4"}, TypeImage},
		{"video extension", Ref{Name: "party.MOV"}, TypeVideo},
		{"video extension in url with query", Ref{URL: "https://cdn.example.com/x/clip.webm?sig=1"}, TypeVideo},
		{"image extension", Ref{Name: "photo.jpg"}, TypeImage},
		{"no information", Ref{}, TypeImage},
		{"octet stream falls through to extension", Ref{MimeType: "application/octet-stream", Name: "a.mkv"}, TypeVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ref))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	names := []string{"", "a", "a.", ".mp4", "a.b.c.mp4", "A.JPEG", "movie.mp4#t=1"}
	mimes := []string{"", "video/", "image/", "text/plain", "VIDEO/MP4"}
	types := []string{"", "video", "image", "other"}

	for _, n := range names {
		for _, m := range mimes {
			for _, ty := range types {
				got := Classify(Ref{Type: ty, MimeType: m, Name: n})
				assert.Contains(t, []Type{TypeImage, TypeVideo}, got)
			}
		}
	}
}

func TestLoading(t *testing.T) {
	p := Loading()
	assert.True(t, p.IsLoading())
	assert.False(t, p.IsVideo())
}
