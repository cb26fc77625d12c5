package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vyrodovalexey/avadispatch/internal/observability"
	"github.com/vyrodovalexey/avadispatch/internal/registry"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

// Source resolves requests and rehydrates endpoints from their IDs.
// *registry.Registry satisfies it.
type Source interface {
	Resolve(ctx context.Context, method, path string, header http.Header) (*registry.DispatchResult, error)
	Endpoint(id int) *registry.Endpoint
}

// Cached entry kinds.
const (
	// entryResult is a serialized dispatch result.
	entryResult = "result"

	// entryNegotiated marks a terminal whose outcome depends on the
	// Content-Type header; the result lives under a content-type key.
	entryNegotiated = "negotiated"

	// entryNoMatch is a cached not-found outcome.
	entryNoMatch = "nomatch"
)

// cachedEntry is the serialized form of a dispatch outcome. Handlers
// are not serializable, so endpoints are stored by registration ID and
// rehydrated through the Source on read. IDs are dense and reassigned
// on every registry rebuild, and an external backend outlives rebuilds,
// so the entry also carries the endpoint's identity; rehydration
// succeeds only when the ID still names the same endpoint.
type cachedEntry struct {
	Kind       string            `json:"kind"`
	EndpointID int               `json:"endpointId,omitempty"`
	Method     string            `json:"method,omitempty"`
	Template   string            `json:"template,omitempty"`
	Consumes   string            `json:"consumes,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Negotiated bool              `json:"negotiated,omitempty"`
}

// CachingResolver caches dispatch results in front of a Source.
//
// Concurrent misses for the same request collapse into a single
// computation via singleflight; every waiter receives that one result.
// Parse errors from content negotiation are never cached. Not-found
// outcomes are cached only when a negative TTL is configured.
type CachingResolver struct {
	source      Source
	cache       Cache
	group       singleflight.Group
	ttl         time.Duration
	negativeTTL time.Duration
	logger      observability.Logger
}

// NewCachingResolver wraps source with a dispatch cache. A nil cache
// or a disabled backend leaves resolution uncached.
func NewCachingResolver(
	source Source,
	c Cache,
	ttl, negativeTTL time.Duration,
	logger observability.Logger,
) *CachingResolver {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachingResolver{
		source:      source,
		cache:       c,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		logger:      logger,
	}
}

// Resolve returns the dispatch result for a request, consulting the
// cache first.
func (c *CachingResolver) Resolve(
	ctx context.Context, method, path string, header http.Header,
) (*registry.DispatchResult, error) {
	if c.cache == nil {
		return c.source.Resolve(ctx, method, path, header)
	}

	baseKey := BuildKey(method, path)
	contentType := headerContentType(header)

	if entry, ok := c.lookup(ctx, baseKey); ok {
		switch entry.Kind {
		case entryNoMatch:
			return nil, util.NewEndpointNotFoundError(method, path)

		case entryResult:
			if res := c.rehydrate(entry); res != nil {
				return res, nil
			}

		case entryNegotiated:
			fullKey := ContentTypeKey(baseKey, contentType)
			if sub, ok := c.lookup(ctx, fullKey); ok && sub.Kind == entryResult {
				if res := c.rehydrate(sub); res != nil {
					return res, nil
				}
			}
		}
	}

	return c.compute(ctx, method, path, header, baseKey, contentType)
}

// compute resolves a cache miss. The flight key includes the content
// type so requests that could negotiate differently never share a
// computation, while identical concurrent requests always do.
func (c *CachingResolver) compute(
	ctx context.Context, method, path string, header http.Header, baseKey, contentType string,
) (*registry.DispatchResult, error) {
	flightKey := ContentTypeKey(baseKey, contentType)

	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		res, err := c.source.Resolve(ctx, method, path, header)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) && c.negativeTTL > 0 {
				c.store(ctx, baseKey, &cachedEntry{Kind: entryNoMatch}, c.negativeTTL)
			}
			return nil, err
		}

		entry := &cachedEntry{
			Kind:       entryResult,
			EndpointID: res.Endpoint.ID(),
			Method:     res.Endpoint.Method(),
			Template:   res.Endpoint.Template().String(),
			Consumes:   res.Endpoint.Consumes().String(),
			Params:     res.Params,
			Negotiated: res.Negotiated,
		}

		if res.Negotiated {
			c.store(ctx, baseKey, &cachedEntry{Kind: entryNegotiated}, c.ttl)
			c.store(ctx, ContentTypeKey(baseKey, contentType), entry, c.ttl)
		} else {
			c.store(ctx, baseKey, entry, c.ttl)
		}

		return res, nil
	})
	if shared {
		GetCacheMetrics().sharedLookups.Inc()
	}
	if err != nil {
		return nil, err
	}

	return v.(*registry.DispatchResult), nil
}

// lookup reads and decodes one cache entry. Backend errors degrade to
// a miss.
func (c *CachingResolver) lookup(ctx context.Context, key string) (*cachedEntry, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheDisabled) {
			c.logger.Warn("dispatch cache read failed",
				observability.String("key", key),
				observability.Error(err))
		}
		return nil, false
	}

	var entry cachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("dispatch cache entry corrupt",
			observability.String("key", key),
			observability.Error(err))
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}

	return &entry, true
}

// store encodes and writes one cache entry. Failures are logged, not
// returned; the cache is an optimization.
func (c *CachingResolver) store(ctx context.Context, key string, entry *cachedEntry, ttl time.Duration) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, key, data, ttl); err != nil && !errors.Is(err, ErrCacheDisabled) {
		c.logger.Warn("dispatch cache write failed",
			observability.String("key", key),
			observability.Error(err))
	}
}

// rehydrate turns a cached entry back into a dispatch result. A nil
// return means the entry is stale: after a registry rebuild the ID may
// be gone, or reassigned to a different endpoint entirely, so the ID
// counts only when the endpoint it names still has the identity the
// entry was written against. The caller falls through to a fresh
// computation.
func (c *CachingResolver) rehydrate(entry *cachedEntry) *registry.DispatchResult {
	ep := c.source.Endpoint(entry.EndpointID)
	if ep == nil {
		return nil
	}
	if ep.Method() != entry.Method ||
		ep.Template().String() != entry.Template ||
		ep.Consumes().String() != entry.Consumes {
		return nil
	}
	return &registry.DispatchResult{
		Endpoint:   ep,
		Params:     entry.Params,
		Negotiated: entry.Negotiated,
	}
}

func headerContentType(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get(registry.ContentTypeHeader)
}
