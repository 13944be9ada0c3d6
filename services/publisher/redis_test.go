package publisher

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_tape", 2)
	defer publisher.Close()

	// Test if Redis is available
	if err := publisher.Ping(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	stream := publisher.Stream("shop_sks")
	assert.Equal(t, "test_tape:shop_sks", stream)
	require.NoError(t, client.Del(ctx, stream).Err())

	for _, msg := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		require.NoError(t, publisher.Publish("shop_sks", []byte(msg)))
	}

	messages, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, `{"n":1}`, messages[0].Values["record"])
	assert.NotEmpty(t, messages[0].Values["published_at"])

	require.NoError(t, publisher.Flush())

	length, err := client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	require.NoError(t, client.Del(ctx, stream).Err())
}
