package rendering

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/cache"
	"github.com/jonathan/resume-builder/internal/observability"
)

type countingRenderer struct {
	calls atomic.Int32
	pdf   []byte
	err   error
}

func (r *countingRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	r.calls.Add(1)
	return r.pdf, r.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) Del(context.Context, ...string) error { return nil }

func TestCachedRenderer_HitSkipsEngine(t *testing.T) {
	next := &countingRenderer{pdf: []byte("%PDF-1.4 a")}
	r := NewCachedRenderer(next, cache.NewMemory(), time.Hour, nil, observability.NewMetrics())
	ctx := context.Background()

	first, err := r.Render(ctx, "source")
	require.NoError(t, err)
	second, err := r.Render(ctx, "source")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())

	_, err = r.Render(ctx, "other source")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedRenderer_ErrorsAreNotCached(t *testing.T) {
	next := &countingRenderer{err: &RenderError{Code: CodeEngineFailed, Message: "boom"}}
	r := NewCachedRenderer(next, cache.NewMemory(), time.Hour, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.Render(ctx, "source")
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedRenderer_CorruptEntryReplaced(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, CacheKey("source"), []byte("garbage"), 0))

	next := &countingRenderer{pdf: []byte("%PDF-1.4 fresh")}
	r := NewCachedRenderer(next, c, time.Hour, nil, nil)

	pdf, err := r.Render(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fresh", string(pdf))

	stored, hit, err := c.Get(ctx, CacheKey("source"))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "%PDF-1.4 fresh", string(stored))
}

func TestCachedRenderer_BypassesBrokenCache(t *testing.T) {
	next := &countingRenderer{pdf: []byte("%PDF-1.4")}
	r := NewCachedRenderer(next, brokenCache{}, time.Hour, nil, nil)

	pdf, err := r.Render(context.Background(), "source")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
}

func TestCachedRenderer_NilCache(t *testing.T) {
	next := &countingRenderer{pdf: []byte("%PDF-1.4")}
	r := NewCachedRenderer(next, nil, 0, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := r.Render(context.Background(), "source")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("a"), CacheKey("a"))
	assert.NotEqual(t, CacheKey("a"), CacheKey("b"))
	assert.Len(t, CacheKey("a"), len("pdf:")+64)
}
