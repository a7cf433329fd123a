package fetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vkarpenko/gitpulse/internal/cache"
)

// freshWindow is the age below which a cached entry is always served without
// attempting a refresh, regardless of TTL policy.
const freshWindow = time.Hour

// Upstream performs one raw request and reports status, body and transport
// error. Satisfied by github.Client; tests substitute a stub.
type Upstream interface {
	Get(ctx context.Context, endpoint string, params url.Values) (int, []byte, error)
}

// Fetcher performs logical requests against the upstream API through the
// tiered cache. It never returns an error: every upstream failure mode is
// converted into best-available cached data or an absent result.
type Fetcher struct {
	upstream   Upstream
	cache      *cache.Cache
	defaultTTL time.Duration
}

// New creates a fetcher. defaultTTL of 0 means 7 days.
func New(upstream Upstream, c *cache.Cache, defaultTTL time.Duration) *Fetcher {
	if defaultTTL == 0 {
		defaultTTL = 7 * 24 * time.Hour
	}
	return &Fetcher{
		upstream:   upstream,
		cache:      c,
		defaultTTL: defaultTTL,
	}
}

// Cache exposes the underlying cache for derived-aggregate entries.
func (f *Fetcher) Cache() *cache.Cache {
	return f.cache
}

// Key computes the cache signature for a logical request. url.Values.Encode
// sorts by key, so parameter order never splits the cache.
func Key(endpoint string, params url.Values) string {
	key := "raw:" + endpoint
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	return key
}

// Fetch performs a logical request under the default TTL policy: a cached
// entry younger than one hour is served as is, an older-but-valid entry
// triggers an opportunistic refresh with the cache kept as fallback.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, bool) {
	return f.fetch(ctx, endpoint, params, f.defaultTTL, false)
}

// FetchTTL performs a logical request with an explicit TTL, which is honored
// exactly: any cached entry younger than ttl is served without a live call.
func (f *Fetcher) FetchTTL(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) (json.RawMessage, bool) {
	return f.fetch(ctx, endpoint, params, ttl, true)
}

func (f *Fetcher) fetch(ctx context.Context, endpoint string, params url.Values, ttl time.Duration, explicit bool) (json.RawMessage, bool) {
	key := Key(endpoint, params)

	cached, storedAt, exists := f.cache.Get(key)
	if exists {
		age := time.Since(storedAt)
		if age < ttl && (age < freshWindow || explicit) {
			return cached, true
		}
		// Entry valid under the default policy but not very fresh: attempt a
		// refresh anyway, keeping the entry as fallback for this attempt.
	}

	status, body, err := f.upstream.Get(ctx, endpoint, params)
	switch {
	case err == nil && status == http.StatusAccepted:
		// Upstream accepted the request but has no data yet.
		slog.Debug("Upstream still computing", "endpoint", endpoint)
		return nil, false

	case err == nil && status >= 200 && status < 300 && len(body) > 0:
		f.cache.Put(key, body)
		return body, true

	case err == nil && (status == http.StatusForbidden || status == http.StatusTooManyRequests):
		slog.Warn("Upstream rate limited", "endpoint", endpoint, "status", status, "cached_fallback", exists)
		if exists {
			return cached, true
		}
		return nil, false

	default:
		slog.Warn("Upstream fetch failed", "endpoint", endpoint, "status", status, "error", err, "cached_fallback", exists)
		if exists {
			return cached, true
		}
		return nil, false
	}
}
