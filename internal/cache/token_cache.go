package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/braces/internal/tokens"
)

// Cache configuration constants
const (
	DefaultMaxEntries      = 256
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = time.Minute
	// EstimatedBytesPerToken covers the Token struct and its interned type string header.
	EstimatedBytesPerToken = 40.0
)

// contentKey identifies one tokenization: the same bytes lexed by two
// languages are distinct entries.
type contentKey struct {
	language string
	hash     uint64
	size     int
}

func newContentKey(language string, content []byte) contentKey {
	return contentKey{language: language, hash: xxhash.Sum64(content), size: len(content)}
}

// CachedStream is one cached token stream.
type CachedStream struct {
	Stream      tokens.Stream
	CachedAt    int64 // Unix nano for atomic compare
	AccessCount int64 // Atomic counter
	Path        string
}

// TokenCache memoizes token streams by content hash and language. Streams
// handed out are shared and must not be modified.
type TokenCache struct {
	streams sync.Map // map[contentKey]*CachedStream
	paths   sync.Map // map[string]contentKey, last stream stored per path

	// Configuration (read-only after creation, except ttlNanos)
	maxEntries int
	ttlNanos   int64

	// Atomic counters
	hits          int64
	misses        int64
	evictions     int64
	totalRequests int64
	count         int64

	createdAt   time.Time
	lastCleanup int64

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// CacheConfig defines configuration options
type CacheConfig struct {
	MaxEntries      int // 0 disables caching
	TTL             time.Duration
	AutoCleanup     bool
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries:      DefaultMaxEntries,
		TTL:             DefaultTTL,
		AutoCleanup:     true,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// NewTokenCache creates a cache. With AutoCleanup a background goroutine
// drops expired entries until Close is called.
func NewTokenCache(config CacheConfig) *TokenCache {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	c := &TokenCache{
		maxEntries:  config.MaxEntries,
		ttlNanos:    config.TTL.Nanoseconds(),
		createdAt:   time.Now(),
		lastCleanup: time.Now().UnixNano(),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	if config.AutoCleanup && config.MaxEntries > 0 {
		interval := config.CleanupInterval
		if interval <= 0 {
			interval = DefaultCleanupInterval
		}
		go c.startAutoCleanup(interval)
	} else {
		close(c.done)
	}
	return c
}

// Enabled reports whether Put stores anything.
func (c *TokenCache) Enabled() bool {
	return c != nil && c.maxEntries > 0
}

// Get returns the cached stream for content lexed as language.
func (c *TokenCache) Get(language string, content []byte) (tokens.Stream, bool) {
	if !c.Enabled() {
		return nil, false
	}
	atomic.AddInt64(&c.totalRequests, 1)
	now := time.Now().UnixNano()

	key := newContentKey(language, content)
	if val, ok := c.streams.Load(key); ok {
		cached := val.(*CachedStream)
		if now-atomic.LoadInt64(&cached.CachedAt) <= atomic.LoadInt64(&c.ttlNanos) {
			atomic.AddInt64(&cached.AccessCount, 1)
			atomic.AddInt64(&c.hits, 1)
			return cached.Stream, true
		}
		// Expired - delete lazily
		if c.streams.CompareAndDelete(key, val) {
			atomic.AddInt64(&c.count, -1)
		}
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores stream for content lexed as language. path may be empty; when
// set, InvalidatePath can later drop the entry.
func (c *TokenCache) Put(path, language string, content []byte, stream tokens.Stream) {
	if !c.Enabled() {
		return
	}
	key := newContentKey(language, content)
	cached := &CachedStream{
		Stream:      stream,
		CachedAt:    time.Now().UnixNano(),
		AccessCount: 1,
		Path:        path,
	}

	if _, loaded := c.streams.Swap(key, cached); !loaded {
		if atomic.AddInt64(&c.count, 1) > int64(c.maxEntries) {
			c.evictOldest(key)
		}
	}

	if path != "" {
		if old, loaded := c.paths.Swap(path, key); loaded && old.(contentKey) != key {
			c.dropKey(old.(contentKey), path)
		}
	}
}

// InvalidatePath drops the stream last stored for path.
func (c *TokenCache) InvalidatePath(path string) bool {
	if !c.Enabled() {
		return false
	}
	val, ok := c.paths.LoadAndDelete(path)
	if !ok {
		return false
	}
	return c.dropKey(val.(contentKey), path)
}

// dropKey removes key if it still belongs to path.
func (c *TokenCache) dropKey(key contentKey, path string) bool {
	val, ok := c.streams.Load(key)
	if !ok || val.(*CachedStream).Path != path {
		return false
	}
	if c.streams.CompareAndDelete(key, val) {
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
		return true
	}
	return false
}

// evictOldest removes the entry cached longest ago, other than keep.
func (c *TokenCache) evictOldest(keep contentKey) {
	var oldestKey any
	var oldestVal any
	oldestTime := time.Now().UnixNano()

	c.streams.Range(func(key, value any) bool {
		if key.(contentKey) == keep {
			return true
		}
		cachedAt := atomic.LoadInt64(&value.(*CachedStream).CachedAt)
		if cachedAt <= oldestTime {
			oldestTime = cachedAt
			oldestKey, oldestVal = key, value
		}
		return true
	})

	if oldestKey != nil && c.streams.CompareAndDelete(oldestKey, oldestVal) {
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *TokenCache) CleanExpired() int {
	now := time.Now().UnixNano()
	ttl := atomic.LoadInt64(&c.ttlNanos)
	cleaned := int64(0)
	live := int64(0)

	c.streams.Range(func(key, value any) bool {
		if now-atomic.LoadInt64(&value.(*CachedStream).CachedAt) > ttl {
			if c.streams.CompareAndDelete(key, value) {
				cleaned++
			}
		} else {
			live++
		}
		return true
	})
	atomic.StoreInt64(&c.count, live)
	atomic.AddInt64(&c.evictions, cleaned)
	atomic.StoreInt64(&c.lastCleanup, now)
	return int(cleaned)
}

// startAutoCleanup runs periodic cleanup until Close.
func (c *TokenCache) startAutoCleanup(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanExpired()
		case <-c.stop:
			return
		}
	}
}

// Close stops the cleanup goroutine and waits for it to exit.
func (c *TokenCache) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// Stats returns cache statistics
func (c *TokenCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	totalRequests := atomic.LoadInt64(&c.totalRequests)

	hitRate := float64(0)
	if totalRequests > 0 {
		hitRate = float64(hits) / float64(totalRequests)
	}

	tokenCount := 0
	c.streams.Range(func(_, value any) bool {
		tokenCount += len(value.(*CachedStream).Stream)
		return true
	})

	return CacheStats{
		Hits:              hits,
		Misses:            atomic.LoadInt64(&c.misses),
		Evictions:         atomic.LoadInt64(&c.evictions),
		TotalRequests:     totalRequests,
		HitRate:           hitRate,
		Entries:           int(atomic.LoadInt64(&c.count)),
		Tokens:            tokenCount,
		CreatedAt:         c.createdAt,
		LastCleanup:       time.Unix(0, atomic.LoadInt64(&c.lastCleanup)),
		Uptime:            time.Since(c.createdAt),
		EstimatedMemoryKB: float64(tokenCount) * EstimatedBytesPerToken / 1024,
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits              int64         `json:"hits"`
	Misses            int64         `json:"misses"`
	Evictions         int64         `json:"evictions"`
	TotalRequests     int64         `json:"total_requests"`
	HitRate           float64       `json:"hit_rate"`
	Entries           int           `json:"entries"`
	Tokens            int           `json:"tokens"`
	CreatedAt         time.Time     `json:"created_at"`
	LastCleanup       time.Time     `json:"last_cleanup"`
	Uptime            time.Duration `json:"uptime"`
	EstimatedMemoryKB float64       `json:"estimated_memory_kb"`
}

// Clear removes all entries and resets statistics
func (c *TokenCache) Clear() {
	c.streams.Range(func(key, _ any) bool {
		c.streams.Delete(key)
		return true
	})
	c.paths.Range(func(key, _ any) bool {
		c.paths.Delete(key)
		return true
	})

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
	atomic.StoreInt64(&c.totalRequests, 0)
	atomic.StoreInt64(&c.count, 0)
	atomic.StoreInt64(&c.lastCleanup, time.Now().UnixNano())
}

// GetCacheInfo returns cache configuration and status
func (c *TokenCache) GetCacheInfo() CacheInfo {
	stats := c.Stats()
	return CacheInfo{
		MaxEntries: c.maxEntries,
		TTL:        time.Duration(atomic.LoadInt64(&c.ttlNanos)),
		Stats:      stats,
		Status:     getHealthStatus(stats.HitRate),
	}
}

// CacheInfo provides cache information
type CacheInfo struct {
	MaxEntries int           `json:"max_entries"`
	TTL        time.Duration `json:"ttl"`
	Stats      CacheStats    `json:"stats"`
	Status     string        `json:"status"`
}

func getHealthStatus(hitRate float64) string {
	switch {
	case hitRate >= 0.95:
		return "excellent"
	case hitRate >= 0.85:
		return "good"
	case hitRate >= 0.70:
		return "fair"
	default:
		return "poor"
	}
}

// UpdateTTL updates TTL and cleans expired entries
func (c *TokenCache) UpdateTTL(ttl time.Duration) {
	atomic.StoreInt64(&c.ttlNanos, ttl.Nanoseconds())
	c.CleanExpired()
}
