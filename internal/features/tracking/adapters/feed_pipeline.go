package adapter

import (
	"time"

	"storefront-tracker/internal/core/cache"
	"storefront-tracker/internal/features/tracking/ports"
)

// NewFeedPipeline assembles the feed sources served to the tracking service. The
// fallback is consulted only when primary has no events, and the cache, when set,
// sits in front of the whole chain so fallback results are memoized as well.
// fallback and c may be nil.
func NewFeedPipeline(primary, fallback ports.FeedProvider, c cache.Cache, ttl time.Duration) ports.FeedProvider {
	feeds := primary
	if fallback != nil {
		feeds = NewChainFeedProvider(primary, fallback)
	}
	if c != nil {
		feeds = NewCachedFeedProvider(feeds, c, ttl)
	}
	return feeds
}
