//go:build integration
// +build integration

package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielrjepsen/Nory-sub001/internal/realtime"
	"github.com/danielrjepsen/Nory-sub001/internal/slideshow"
)

// Integration tests that require a real Redis server
// Run with: REDIS_URL=redis://localhost:6379/15 go test -tags=integration ./cmd/api

func TestRedisReactions(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	engine := slideshow.NewEngine(nil, slideshow.Options{EventID: "evt-it"}, nil)
	defer engine.Close()

	channels := realtime.ChannelsFor("nory:test", "evt-it")
	sub, err := realtime.NewSubscriber(redisURL, channels, engine)
	require.NoError(t, err, "Should be able to connect to Redis")
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	pub := redis.NewClient(opts)
	defer pub.Close()

	assert.Eventually(t, func() bool {
		pub.Publish(ctx, channels.Hearts, `{"id":"it-heart","userName":"Ana"}`)
		return len(engine.View().Hearts) == 1
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, pub.Publish(ctx, channels.Activity, `{"type":"join","userName":"Bo"}`).Err())
	assert.Eventually(t, func() bool {
		return len(engine.View().Activities.Visible) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
