// Package cache memoizes conversion results in memory, keyed by a digest of
// the uploaded content and the format it was parsed as.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Results is an in-memory TTL cache of conversion results.
type Results[T any] struct {
	cache *gocache.Cache
}

// NewResults creates a cache whose entries expire after ttl. Expired entries
// are purged every 2*ttl. A non-positive ttl keeps entries until deleted.
func NewResults[T any](ttl time.Duration) *Results[T] {
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl, cleanup = gocache.NoExpiration, 0
	}
	return &Results[T]{cache: gocache.New(ttl, cleanup)}
}

// Key returns the cache key for content parsed as format. An empty format
// means "auto-detect" and is keyed separately from explicit formats.
func Key(format string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result.
func (r *Results[T]) Get(key string) (T, bool) {
	if v, found := r.cache.Get(key); found {
		if t, ok := v.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Set stores a result with the default TTL.
func (r *Results[T]) Set(key string, v T) {
	r.cache.SetDefault(key, v)
}

// Delete removes a result.
func (r *Results[T]) Delete(key string) {
	r.cache.Delete(key)
}

// Flush removes every result.
func (r *Results[T]) Flush() {
	r.cache.Flush()
}

// Len returns the number of cached results, including expired ones not
// yet purged.
func (r *Results[T]) Len() int {
	return r.cache.ItemCount()
}
