package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured.
const DefaultRedisChannel = "taskhub:notifications"

// envelope is what travels over Redis between instances.
type envelope struct {
	UserID uuid.UUID       `json:"userId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// RedisBridge is a Registry that fans publishes out through Redis pub/sub.
// Channels stay registered on the local registry; every instance running
// Run forwards the messages it receives to its own local channels.
type RedisBridge struct {
	client  redis.UniversalClient
	channel string
	local   Registry
	logger  *slog.Logger

	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

var _ Registry = (*RedisBridge)(nil)

// NewRedisBridge creates a RedisBridge on top of local.
func NewRedisBridge(client redis.UniversalClient, channel string, local Registry, log *slog.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisBridge{
		client:  client,
		channel: channel,
		local:   local,
		logger:  log.With(slog.String("component", "realtime_redis_bridge")),

		retryDelay:    500 * time.Millisecond,
		maxRetryDelay: 30 * time.Second,
	}
}

// Register implements Registry.
func (b *RedisBridge) Register(userID uuid.UUID, ch Channel) {
	b.local.Register(userID, ch)
}

// Unregister implements Registry.
func (b *RedisBridge) Unregister(userID uuid.UUID, ch Channel) bool {
	return b.local.Unregister(userID, ch)
}

// Publish implements Registry. When Redis is unreachable the event is
// delivered locally instead.
func (b *RedisBridge) Publish(ctx context.Context, userID uuid.UUID, event string, payload any) {
	log := logger.FromContextOrDefault(ctx, b.logger)

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to encode realtime payload",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	msg, err := json.Marshal(envelope{UserID: userID, Event: event, Data: data})
	if err != nil {
		log.Error("failed to encode realtime envelope", slog.String("error", err.Error()))
		return
	}

	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		log.Warn("redis publish failed, delivering locally",
			slog.String("channel", b.channel),
			slog.String("error", err.Error()))
		b.local.Publish(ctx, userID, event, json.RawMessage(data))
	}
}

// Run subscribes to the bridge channel and forwards messages to the local
// registry until ctx is cancelled. While Redis is unreachable the
// subscription is retried with backoff and Publish delivers locally, so an
// outage never stops the server.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub, err := b.subscribe(ctx)
	if err != nil {
		return nil
	}
	defer func() {
		if err := sub.Close(); err != nil {
			b.logger.Debug("failed to close redis subscription", slog.String("error", err.Error()))
		}
	}()
	b.logger.Info("subscribed to redis channel", slog.String("channel", b.channel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			b.handleMessage(ctx, msg.Payload)
		}
	}
}

// subscribe blocks until the subscription is confirmed or ctx ends.
func (b *RedisBridge) subscribe(ctx context.Context) (*redis.PubSub, error) {
	var sub *redis.PubSub
	attempt := 0
	backoff := retry.WithCappedDuration(b.maxRetryDelay, retry.NewExponential(b.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		s := b.client.Subscribe(ctx, b.channel)
		if _, err := s.Receive(ctx); err != nil {
			_ = s.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("redis subscription failed, delivering locally until it recovers",
				slog.String("channel", b.channel),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(fmt.Errorf("failed to subscribe to %s: %w", b.channel, err))
		}
		sub = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *RedisBridge) handleMessage(ctx context.Context, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn("discarding malformed redis message", slog.String("error", err.Error()))
		return
	}
	if env.UserID == uuid.Nil || env.Event == "" {
		b.logger.Warn("discarding incomplete redis message")
		return
	}
	b.local.Publish(ctx, env.UserID, env.Event, env.Data)
}
