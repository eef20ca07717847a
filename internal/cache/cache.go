// Package cache provides the TTL report cache. Reports are cached as JSON
// under deterministic keys derived from the query parameters; the cache is
// an optimization layer only, and every failure degrades to a miss.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a read-or-compute-and-write store for serialized reports.
// Implementations must never fail a computation: a broken backend just
// reports misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Key builds a deterministic cache key from query parameters. Parts are
// lowercased and trimmed so equivalent queries hash identically.
func Key(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha1.Sum([]byte(strings.Join(normalized, "|")))
	return "report:" + hex.EncodeToString(sum[:])
}
