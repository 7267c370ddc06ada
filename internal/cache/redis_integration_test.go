//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping integration test")
	}
	ctx := context.Background()

	c, err := Dial(ctx, addr, "", 0)
	require.NoError(t, err)
	defer c.Close()

	key := "test:" + uuid.NewString()
	defer func() { _ = c.Del(ctx, key) }()

	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, []byte("%PDF"), time.Minute))
	val, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "%PDF", string(val))
}
