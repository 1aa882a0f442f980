package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the display service
type Config struct {
	Environment string
	LogLevel    string

	Server struct {
		Port string
	}

	URLs struct {
		API       string
		EventsApp string
		Dashboard string
	}

	API struct {
		Token       string
		Timeout     time.Duration
		MaxAttempts int
	}

	Slideshow struct {
		EventID        string
		Preview        bool
		Speed          time.Duration
		PollInterval   time.Duration
		AmbientEnabled bool
		AmbientPalette string
	}

	Realtime struct {
		RedisURL      string
		ChannelPrefix string
	}

	Storage struct {
		Resolver   string
		Endpoint   string
		AccessKey  string
		SecretKey  string
		UseSSL     bool
		PresignTTL time.Duration
	}

	CORS struct {
		AllowOrigins string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")
	config.LogLevel = getEnv("LOG_LEVEL", "info")

	config.Server.Port = getEnv("PORT", "8080")

	hostname := getEnv("PUBLIC_HOSTNAME", "localhost")
	config.URLs.API = strings.TrimRight(getEnv("API_BASE_URL", defaultURL(hostname, "api", "5000")), "/")
	config.URLs.EventsApp = strings.TrimRight(getEnv("EVENTS_APP_URL", defaultURL(hostname, "events", "3001")), "/")
	config.URLs.Dashboard = strings.TrimRight(getEnv("DASHBOARD_URL", defaultURL(hostname, "dashboard", "3000")), "/")

	config.API.Token = getEnv("API_TOKEN", "")
	config.API.Timeout = getEnvAsDuration("API_TIMEOUT", 15*time.Second)
	config.API.MaxAttempts = getEnvAsInt("API_MAX_ATTEMPTS", 3)

	config.Slideshow.EventID = getEnv("EVENT_ID", "")
	config.Slideshow.Preview = getEnvAsBool("SLIDESHOW_PREVIEW", false)
	config.Slideshow.Speed = getEnvAsDuration("SLIDESHOW_SPEED", 5*time.Second)
	config.Slideshow.PollInterval = getEnvAsDuration("PHOTO_POLL_INTERVAL", 30*time.Second)
	config.Slideshow.AmbientEnabled = getEnvAsBool("AMBIENT_ENABLED", true)
	config.Slideshow.AmbientPalette = getEnv("AMBIENT_PALETTE", "")

	config.Realtime.RedisURL = getEnv("REDIS_URL", "")
	config.Realtime.ChannelPrefix = getEnv("REALTIME_CHANNEL_PREFIX", "nory:slideshow")

	config.Storage.Resolver = getEnv("MEDIA_RESOLVER", "direct")
	config.Storage.Endpoint = getEnv("MINIO_ENDPOINT", "")
	config.Storage.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	config.Storage.SecretKey = getEnv("MINIO_SECRET_KEY", "")
	config.Storage.UseSSL = getEnvAsBool("MINIO_USE_SSL", true)
	config.Storage.PresignTTL = getEnvAsDuration("MINIO_PRESIGN_TTL", time.Hour)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")

	return config
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.Slideshow.EventID == "" {
		return errors.New("EVENT_ID is required")
	}
	if c.Slideshow.Speed <= 0 {
		return errors.New("SLIDESHOW_SPEED must be positive")
	}
	switch c.Storage.Resolver {
	case "direct":
	case "minio":
		if c.Storage.Endpoint == "" {
			return errors.New("MINIO_ENDPOINT is required when MEDIA_RESOLVER=minio")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_RESOLVER: %s", c.Storage.Resolver)
	}
	return nil
}

// RemoteURL returns the guest upload page the slideshow QR code points to
func (c *Config) RemoteURL(eventID string) string {
	return c.URLs.EventsApp + "/remote/" + eventID
}

// AllowedOrigins splits the comma separated CORS origins
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// defaultURL derives a service URL from the public hostname
func defaultURL(hostname, service, localPort string) string {
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return "http://" + hostname + ":" + localPort
	}
	return "https://" + service + "." + hostname
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or plain milliseconds ("5000")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
