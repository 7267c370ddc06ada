package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDel(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	val, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Del(ctx, "k"))
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, hit, _ := c.Get(ctx, "k")
	assert.True(t, hit)

	now = now.Add(time.Second)
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(val))
}
