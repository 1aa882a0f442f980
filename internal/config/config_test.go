package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PUBLIC_HOSTNAME", "localhost")
	t.Setenv("EVENT_ID", "evt-1")
	for _, key := range []string{"API_BASE_URL", "EVENTS_APP_URL", "SLIDESHOW_SPEED", "PHOTO_POLL_INTERVAL", "MEDIA_RESOLVER"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:5000", cfg.URLs.API)
	assert.Equal(t, "http://localhost:3001/remote/evt-1", cfg.RemoteURL("evt-1"))
	assert.Equal(t, 5*time.Second, cfg.Slideshow.Speed)
	assert.Equal(t, 30*time.Second, cfg.Slideshow.PollInterval)
	assert.Equal(t, "direct", cfg.Storage.Resolver)
}

func TestLoad_HostnameFallback(t *testing.T) {
	t.Setenv("PUBLIC_HOSTNAME", "nory.io")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("EVENTS_APP_URL", "")

	cfg := Load()
	assert.Equal(t, "https://api.nory.io", cfg.URLs.API)
	assert.Equal(t, "https://events.nory.io", cfg.URLs.EventsApp)
	assert.Equal(t, "https://dashboard.nory.io", cfg.URLs.Dashboard)
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://backend.test/")
	t.Setenv("SLIDESHOW_SPEED", "8000")
	t.Setenv("PHOTO_POLL_INTERVAL", "1m")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.test, https://b.test")

	cfg := Load()
	assert.Equal(t, "https://backend.test", cfg.URLs.API)
	assert.Equal(t, 8*time.Second, cfg.Slideshow.Speed)
	assert.Equal(t, time.Minute, cfg.Slideshow.PollInterval)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins())
}

func TestValidate(t *testing.T) {
	t.Setenv("SLIDESHOW_SPEED", "")
	cfg := Load()
	cfg.Slideshow.EventID = ""
	assert.Error(t, cfg.Validate())

	cfg.Slideshow.EventID = "evt"
	cfg.Storage.Resolver = "minio"
	cfg.Storage.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Resolver = "ftp"
	assert.Error(t, cfg.Validate())
}
