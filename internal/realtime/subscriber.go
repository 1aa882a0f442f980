package realtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
)

// Sink receives reactions ingested from pub/sub
type Sink interface {
	AddHeart(h feed.Heart) (feed.FloatingHeart, bool)
	AddActivity(a feed.Activity) feed.Activity
}

// Channels names the pub/sub channels of one event
type Channels struct {
	Hearts   string
	Activity string
}

// ChannelsFor builds "<prefix>:<eventID>:hearts" and "<prefix>:<eventID>:activity"
func ChannelsFor(prefix, eventID string) Channels {
	base := strings.TrimSuffix(prefix, ":") + ":" + eventID
	return Channels{Hearts: base + ":hearts", Activity: base + ":activity"}
}

// Subscriber forwards hearts and activities published by the guest app
type Subscriber struct {
	client   *redis.Client
	channels Channels
	sink     Sink
	log      *log.Logger
}

// NewSubscriber connects to redisURL
func NewSubscriber(redisURL string, channels Channels, sink Sink) (*Subscriber, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{
		Mode: maintnotifications.ModeDisabled,
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Subscriber{
		client:   client,
		channels: channels,
		sink:     sink,
		log:      logger.Realtime(),
	}, nil
}

// Run consumes messages until ctx is done
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channels.Hearts, s.channels.Activity)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info("Subscribed to reactions", "hearts", s.channels.Hearts, "activity", s.channels.Activity)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.Handle(msg.Channel, []byte(msg.Payload))
		}
	}
}

// Handle applies one pub/sub payload
func (s *Subscriber) Handle(channel string, payload []byte) {
	switch channel {
	case s.channels.Hearts:
		h, err := ParseHeart(payload)
		if err != nil {
			s.log.Warn("Ignoring heart", "error", err)
			return
		}
		s.sink.AddHeart(h)
	case s.channels.Activity:
		a, err := ParseActivity(payload)
		if err != nil {
			s.log.Warn("Ignoring activity", "error", err)
			return
		}
		s.sink.AddActivity(a)
	default:
		s.log.Debug("Message on unexpected channel", "channel", channel)
	}
}

func (s *Subscriber) Close() error {
	return s.client.Close()
}
