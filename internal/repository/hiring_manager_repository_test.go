package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDirectory_UnreachableIsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	dir := NewRedisHiringManagerDirectory(client, "hiring_manager:")
	_, err := dir.GetByID(context.Background(), "hm-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
