package main

import (
	"context"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielrjepsen/Nory-sub001/internal/apiclient"
	"github.com/danielrjepsen/Nory-sub001/internal/config"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/metrics"
	"github.com/danielrjepsen/Nory-sub001/internal/realtime"
	"github.com/danielrjepsen/Nory-sub001/internal/server"
	"github.com/danielrjepsen/Nory-sub001/internal/shell"
	"github.com/danielrjepsen/Nory-sub001/internal/slideshow"
	"github.com/danielrjepsen/Nory-sub001/internal/storage"
)

const (
	retryInterval   = 300 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	resolverType, err := storage.ValidateResolverType(cfg.Storage.Resolver)
	if err != nil {
		log.Fatal("Invalid media resolver", "error", err)
	}
	resolver, err := storage.NewFactory(resolverType).CreateResolver(cfg)
	if err != nil {
		log.Fatal("Failed to create media resolver", "error", err)
	}

	client, err := apiclient.New(cfg.URLs.API,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		apiclient.WithToken(cfg.API.Token),
		apiclient.WithResolver(resolver),
		apiclient.WithRetry(cfg.API.MaxAttempts, retryInterval),
	)
	if err != nil {
		log.Fatal("Failed to create API client", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	engine := slideshow.NewEngine(client, slideshow.Options{
		EventID:        cfg.Slideshow.EventID,
		Preview:        cfg.Slideshow.Preview,
		Speed:          cfg.Slideshow.Speed,
		PollInterval:   cfg.Slideshow.PollInterval,
		AmbientEnabled: cfg.Slideshow.AmbientEnabled,
		AmbientPalette: cfg.Slideshow.AmbientPalette,
		RemoteURL:      cfg.RemoteURL(cfg.Slideshow.EventID),
	}, m)

	hub := realtime.NewHub(
		func() any { return shell.Compose(engine.View()) },
		engine,
		realtime.WithMetrics(m),
		realtime.WithCheckOrigin(originChecker(cfg.AllowedOrigins())),
	)
	unsubscribe := engine.Subscribe(hub.Notify)
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	if cfg.Realtime.RedisURL != "" {
		channels := realtime.ChannelsFor(cfg.Realtime.ChannelPrefix, cfg.Slideshow.EventID)
		sub, err := realtime.NewSubscriber(cfg.Realtime.RedisURL, channels, engine)
		if err != nil {
			log.Warn("Reactions from Redis disabled", "error", err)
		} else {
			defer sub.Close()
			go func() {
				if err := sub.Run(ctx); err != nil {
					logger.Realtime().Error("Redis subscriber stopped", "error", err)
				}
			}()
		}
	}

	srv := server.New(cfg, server.Deps{
		Engine:   engine,
		Uploader: client,
		Hub:      hub,
		Metrics:  m,
		Gatherer: registry,
	})
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	// the first load may take a few retries; serve the loading screen meanwhile
	go func() {
		if err := engine.Start(ctx); err != nil {
			log.Error("Failed to start slideshow", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	engine.Close()
	log.Info("Slideshow stopped")
}

// originChecker allows websocket upgrades from the configured CORS origins
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
