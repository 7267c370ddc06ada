package rendering

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/observability"
)

// Cache is the subset of internal/cache the renderer needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CachedRenderer memoizes PDFs by a digest of the LaTeX source. Cache
// failures are logged and the engine is used directly.
type CachedRenderer struct {
	next    Renderer
	cache   Cache
	ttl     time.Duration
	log     *logrus.Entry
	metrics *observability.Metrics
}

// NewCachedRenderer wraps next. A nil cache disables caching but keeps the
// logging and metrics.
func NewCachedRenderer(next Renderer, c Cache, ttl time.Duration, log *logrus.Entry, m *observability.Metrics) *CachedRenderer {
	if log == nil {
		log = observability.Discard()
	}
	return &CachedRenderer{next: next, cache: c, ttl: ttl, log: log, metrics: m}
}

var pdfMagic = []byte("%PDF")

func (r *CachedRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	key := CacheKey(source)
	log := r.log.WithField("cache_key", key)

	if r.cache != nil {
		pdf, hit, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.WithError(err).Warn("pdf cache lookup failed")
		case hit && bytes.HasPrefix(pdf, pdfMagic):
			r.metrics.ObserveRenderCache(true)
			log.Debug("pdf cache hit")
			return pdf, nil
		case hit:
			log.Warn("discarding corrupt cached pdf")
			if err := r.cache.Del(ctx, key); err != nil {
				log.WithError(err).Warn("failed to delete corrupt cache entry")
			}
		}
		r.metrics.ObserveRenderCache(false)
	}

	start := time.Now()
	pdf, err := r.next.Render(ctx, source)
	if err != nil {
		code := ErrorCode(err)
		r.metrics.ObserveRender(code)
		log.WithError(err).WithField("code", code).Warn("render failed")
		return nil, err
	}
	r.metrics.ObserveRender("ok")
	log.WithFields(logrus.Fields{
		"bytes":      len(pdf),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("rendered pdf")

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, pdf, r.ttl); err != nil {
			log.WithError(err).Warn("failed to store pdf in cache")
		}
	}
	return pdf, nil
}

// CacheKey derives the cache key for a LaTeX source.
func CacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "pdf:" + hex.EncodeToString(sum[:])
}
