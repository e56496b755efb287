package adapter

import (
	"context"
	"errors"

	"storefront-tracker/internal/features/tracking/domain"
	"storefront-tracker/internal/features/tracking/ports"
)

// ChainFeedProvider asks each provider in turn and returns the first non-empty feed.
type ChainFeedProvider struct {
	providers []ports.FeedProvider
}

// NewChainFeedProvider creates a ChainFeedProvider; nil providers are skipped.
func NewChainFeedProvider(providers ...ports.FeedProvider) *ChainFeedProvider {
	chain := &ChainFeedProvider{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// GetTrackingFeed returns the first non-empty feed. When every provider fails, the joined
// errors are returned; when some succeed but all are empty, an empty feed is returned.
func (c *ChainFeedProvider) GetTrackingFeed(ctx context.Context, orderID string) (*domain.TrackingFeed, error) {
	var errs []error
	succeeded := false

	for _, p := range c.providers {
		feed, err := p.GetTrackingFeed(ctx, orderID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		succeeded = true
		if !feed.IsEmpty() {
			return feed, nil
		}
	}

	if !succeeded && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &domain.TrackingFeed{}, nil
}
