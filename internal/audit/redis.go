package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the connection settings for the Redis stream publisher.
type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// Stream appends events to a Redis stream with XADD.
type Stream struct {
	client *redis.Client
	stream string
}

// NewStream connects to Redis and verifies the connection with PING.
func NewStream(ctx context.Context, cfg Config) (*Stream, error) {
	if cfg.Stream == "" {
		cfg.Stream = "pantry:recipes"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewStreamWithClient(client, cfg.Stream), nil
}

// NewStreamWithClient wraps an existing client.
func NewStreamWithClient(client *redis.Client, stream string) *Stream {
	return &Stream{client: client, stream: stream}
}

func (s *Stream) Publish(ctx context.Context, event Event) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: event.Values(),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Recent returns up to count stream entries, newest first.
func (s *Stream) Recent(ctx context.Context, count int64) ([]redis.XMessage, error) {
	messages, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange %s: %w", s.stream, err)
	}
	return messages, nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}
