package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-tracker/internal/core/cache"
	"storefront-tracker/internal/core/logger"
	"storefront-tracker/internal/features/tracking/domain"
	"storefront-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

const feedCacheKeyPrefix = "tracking_feed:"

// CachedFeedProvider memoizes another FeedProvider in the cache port.
// Cache failures never fail a request; they only cost an upstream call.
type CachedFeedProvider struct {
	next  ports.FeedProvider
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedFeedProvider wraps next with a cache of the given TTL.
func NewCachedFeedProvider(next ports.FeedProvider, c cache.Cache, ttl time.Duration) *CachedFeedProvider {
	return &CachedFeedProvider{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   logger.Named("tracking.cache"),
	}
}

// GetTrackingFeed returns the cached feed or fetches and stores it.
func (p *CachedFeedProvider) GetTrackingFeed(ctx context.Context, orderID string) (*domain.TrackingFeed, error) {
	key := feedCacheKeyPrefix + orderID

	data, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var feed domain.TrackingFeed
		if jsonErr := json.Unmarshal(data, &feed); jsonErr == nil {
			return &feed, nil
		}
		p.log.Warn("Discarding corrupt cached feed", zap.String("order_id", orderID))
	case !errors.Is(err, cache.ErrCacheMiss):
		p.log.Warn("Feed cache read failed", zap.String("order_id", orderID), zap.Error(err))
	}

	feed, err := p.next.GetTrackingFeed(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(feed); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
			p.log.Warn("Feed cache write failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	return feed, nil
}

// Invalidate drops the cached feed of an order.
func (p *CachedFeedProvider) Invalidate(ctx context.Context, orderID string) error {
	return p.cache.Delete(ctx, feedCacheKeyPrefix+orderID)
}
