package screen

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Kind
	}{
		{"explicit ended outranks 404", Input{ErrorCode: "ended", HTTPStatus: http.StatusNotFound, HasPhotos: true}, KindEnded},
		{"explicit draft outranks 404", Input{ErrorCode: "EVENT_DRAFT", HTTPStatus: http.StatusNotFound}, KindDraft},
		{"archived maps to ended", Input{ErrorCode: "event_archived"}, KindEnded},
		{"404 without code", Input{HTTPStatus: http.StatusNotFound, HasPhotos: true}, KindError},
		{"first load", Input{EventPending: true}, KindLoading},
		{"no photos and not loading", Input{}, KindNoPhotos},
		{"no photos while loading", Input{IsLoading: true}, KindLive},
		{"photos", Input{HasPhotos: true}, KindLive},
		{"soft error keeps live view", Input{HTTPStatus: http.StatusBadGateway, HasPhotos: true}, KindLive},
		{"soft error without photos", Input{HTTPStatus: http.StatusInternalServerError}, KindNoPhotos},
		{"unknown code is ignored", Input{ErrorCode: "rate_limited", HasPhotos: true}, KindLive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.in).Kind)
		})
	}
}

func TestSelect_PreviewOverlay(t *testing.T) {
	draft := Select(Input{ErrorCode: CodeDraft})
	previewDraft := Select(Input{ErrorCode: CodeDraft, Preview: true})

	assert.Equal(t, KindDraft, previewDraft.Kind)
	assert.True(t, previewDraft.Preview)
	assert.NotEqual(t, draft.Message, previewDraft.Message)

	live := Select(Input{HasPhotos: true, Preview: true})
	assert.Equal(t, KindLive, live.Kind)
	assert.True(t, live.Preview)
}

func TestSelect_RetryAffordance(t *testing.T) {
	assert.True(t, Select(Input{}).Retry)
	assert.True(t, Select(Input{}).ShowQR)
	assert.True(t, Select(Input{HTTPStatus: http.StatusServiceUnavailable, HasPhotos: true}).Retry)
	assert.False(t, Select(Input{HasPhotos: true}).Retry)
	assert.False(t, Select(Input{ErrorCode: CodeEnded}).Retry)
}
