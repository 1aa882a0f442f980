package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/ambient"
	"github.com/danielrjepsen/Nory-sub001/internal/domain/media"
	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/screen"
	"github.com/danielrjepsen/Nory-sub001/internal/slideshow"
)

type fakeEngine struct {
	index      int
	speed      time.Duration
	categoryID *string
	current    string
	refreshed  bool
	offline    bool
	ambient    bool
	hearts     map[string]bool
	activities []feed.Activity
	failures   []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{speed: slideshow.SpeedNormal, current: "p0", hearts: map[string]bool{}}
}

func (f *fakeEngine) View() slideshow.View {
	return slideshow.View{
		EventID: "evt-1",
		Screen:  screen.Screen{Kind: screen.KindLive, ShowQR: true},
		Online:  !f.offline,
		Ambient: ambient.State{Enabled: f.ambient},
		Playback: slideshow.Snapshot{
			State:      slideshow.StatePlaying,
			Index:      f.index,
			Total:      3,
			Current:    media.Photo{ID: f.current, Type: media.TypeImage},
			SpeedMS:    f.speed.Milliseconds(),
			CategoryID: f.categoryID,
		},
	}
}

func (f *fakeEngine) Next() bool {
	f.index = (f.index + 1) % 3
	return true
}

func (f *fakeEngine) Previous() bool {
	f.index = (f.index + 2) % 3
	return true
}

func (f *fakeEngine) Pause() bool { return true }

func (f *fakeEngine) Play() bool { return false }

func (f *fakeEngine) TogglePlay() bool { return true }

func (f *fakeEngine) SetSpeed(d time.Duration) bool {
	changed := d != f.speed
	f.speed = d
	return changed
}

func (f *fakeEngine) SelectCategory(ctx context.Context, categoryID *string) error {
	if categoryID != nil && *categoryID != "ceremony" {
		return fmt.Errorf("%w: %s", slideshow.ErrUnknownCategory, *categoryID)
	}
	f.categoryID = categoryID
	return nil
}

func (f *fakeEngine) Refresh(ctx context.Context) { f.refreshed = true }

func (f *fakeEngine) VideoStarted(photoID string) bool { return photoID == f.current }

func (f *fakeEngine) VideoEnded(photoID string) bool { return photoID == f.current }

func (f *fakeEngine) MediaFailed(photoID, reason string) bool {
	if photoID != f.current {
		return false
	}
	f.failures = append(f.failures, reason)
	return true
}

func (f *fakeEngine) AddHeart(h feed.Heart) (feed.FloatingHeart, bool) {
	if f.hearts[h.ID] {
		return feed.FloatingHeart{}, false
	}
	f.hearts[h.ID] = true
	return feed.FloatingHeart{Heart: h, X: 50}, true
}

func (f *fakeEngine) AddActivity(a feed.Activity) feed.Activity {
	a.ID = "act-1"
	f.activities = append(f.activities, a)
	return a
}

func (f *fakeEngine) SetAmbient(enabled bool) { f.ambient = enabled }

func setupRouter(engine Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewSlideshowHandler(engine)
	qr := NewQRHandler("https://events.nory.test/remote/evt-1")

	g := router.Group("/api/v1/slideshow")
	g.GET("/frame", h.GetFrame)
	g.GET("/state", h.GetState)
	g.POST("/next", h.Next)
	g.POST("/previous", h.Previous)
	g.POST("/play", h.Play)
	g.POST("/pause", h.Pause)
	g.POST("/toggle", h.Toggle)
	g.POST("/refresh", h.Refresh)
	g.PUT("/speed", h.SetSpeed)
	g.PUT("/category", h.SelectCategory)
	g.PUT("/ambient", h.SetAmbient)
	g.POST("/media/:photoId/started", h.MediaStarted)
	g.POST("/media/:photoId/ended", h.MediaEnded)
	g.POST("/media/:photoId/failed", h.MediaFailed)
	g.POST("/hearts", h.AddHeart)
	g.POST("/activities", h.AddActivity)
	g.GET("/qr.png", qr.GetQRCode)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSlideshowHandler_Frame(t *testing.T) {
	router := setupRouter(newFakeEngine())

	w := do(router, http.MethodGet, "/api/v1/slideshow/frame", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.Parse(w.Body.String())
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "live", body.Get("data.screen.kind").String())
	assert.Equal(t, "background", body.Get("data.layers.0.kind").String())

	w = do(router, http.MethodGet, "/api/v1/slideshow/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "playing", gjson.Get(w.Body.String(), "data.playback.state").String())
}

func TestSlideshowHandler_Navigation(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	w := do(router, http.MethodPost, "/api/v1/slideshow/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "data.index").Int())
	assert.Equal(t, "updated", gjson.Get(w.Body.String(), "message").String())

	w = do(router, http.MethodPost, "/api/v1/slideshow/previous", "")
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "data.index").Int())

	w = do(router, http.MethodPost, "/api/v1/slideshow/play", "")
	assert.Equal(t, "unchanged", gjson.Get(w.Body.String(), "message").String())

	w = do(router, http.MethodPost, "/api/v1/slideshow/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, engine.refreshed)
}

func TestSlideshowHandler_RefreshWhileOffline(t *testing.T) {
	engine := newFakeEngine()
	engine.offline = true
	router := setupRouter(engine)

	w := do(router, http.MethodPost, "/api/v1/slideshow/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, engine.refreshed)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestSlideshowHandler_SetAmbient(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	w := do(router, http.MethodPut, "/api/v1/slideshow/ambient", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, engine.ambient)
	assert.True(t, gjson.Get(w.Body.String(), "data.enabled").Bool())

	w = do(router, http.MethodPut, "/api/v1/slideshow/ambient", `{"enabled":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, engine.ambient)

	w = do(router, http.MethodPut, "/api/v1/slideshow/ambient", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, engine.ambient)
}

func TestSlideshowHandler_SetSpeed(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	tests := []struct {
		body string
		code int
		want time.Duration
	}{
		{`{"speed":"fast"}`, http.StatusOK, slideshow.SpeedFast},
		{`{"speed":7000}`, http.StatusOK, 7 * time.Second},
		{`{"speed":"10s"}`, http.StatusOK, slideshow.SpeedSlow},
		{`{"speed":"warp"}`, http.StatusBadRequest, slideshow.SpeedSlow},
		{`{}`, http.StatusBadRequest, slideshow.SpeedSlow},
		{`nope`, http.StatusBadRequest, slideshow.SpeedSlow},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := do(router, http.MethodPut, "/api/v1/slideshow/speed", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.want, engine.speed)
		})
	}
}

func TestSlideshowHandler_SelectCategory(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	w := do(router, http.MethodPut, "/api/v1/slideshow/category", `{"categoryId":"ceremony"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, engine.categoryID)
	assert.Equal(t, "ceremony", *engine.categoryID)

	w = do(router, http.MethodPut, "/api/v1/slideshow/category", `{"categoryId":"afterparty"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPut, "/api/v1/slideshow/category", `{"categoryId":"a/b"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/api/v1/slideshow/category", `{"categoryId":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, engine.categoryID)
}

func TestSlideshowHandler_MediaEvents(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	w := do(router, http.MethodPost, "/api/v1/slideshow/media/p0/started", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/api/v1/slideshow/media/p9/ended", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPost, "/api/v1/slideshow/media/p0/failed", `{"reason":"decode error"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"decode error"}, engine.failures)

	w = do(router, http.MethodPost, "/api/v1/slideshow/media/p0/failed", `{"reason":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlideshowHandler_Hearts(t *testing.T) {
	router := setupRouter(newFakeEngine())

	w := do(router, http.MethodPost, "/api/v1/slideshow/hearts", `{"id":"h1","userName":"Ana"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 50.0, gjson.Get(w.Body.String(), "data.x").Float())

	w = do(router, http.MethodPost, "/api/v1/slideshow/hearts", `{"id":"h1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", gjson.Get(w.Body.String(), "message").String())

	w = do(router, http.MethodPost, "/api/v1/slideshow/hearts", `{"userName":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlideshowHandler_Activities(t *testing.T) {
	engine := newFakeEngine()
	router := setupRouter(engine)

	w := do(router, http.MethodPost, "/api/v1/slideshow/activities", `{"type":"join","userName":"Bo","message":"Bo joined"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, engine.activities, 1)
	assert.Equal(t, feed.ActivityJoin, engine.activities[0].Type)

	w = do(router, http.MethodPost, "/api/v1/slideshow/activities", `{"type":"media_failure","message":"spoof"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/slideshow/activities", `{"type":"message"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRHandler(t *testing.T) {
	router := setupRouter(newFakeEngine())

	w := do(router, http.MethodGet, "/api/v1/slideshow/qr.png?size=200", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	w = do(router, http.MethodGet, "/api/v1/slideshow/qr.png?size=5000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
