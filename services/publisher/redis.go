package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamMaxLength int

	mu      sync.Mutex
	streams map[string]struct{}
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
		streams:         make(map[string]struct{}),
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping() error {
	return p.client.Ping(p.ctx).Err()
}

// Stream returns the stream name used for key
func (p *RedisPublisher) Stream(key string) string {
	return p.streamPrefix + ":" + key
}

// Publish adds the message to the stream of key
func (p *RedisPublisher) Publish(key string, message []byte) error {
	stream := p.Stream(key)

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"record":       string(message),
			"published_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.streams[stream] = struct{}{}
	p.mu.Unlock()
	return nil
}

// Flush trims every stream written to the configured maximum length
func (p *RedisPublisher) Flush() error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	p.mu.Lock()
	streams := lo.Keys(p.streams)
	p.mu.Unlock()

	for _, stream := range streams {
		err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err()
		if err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
