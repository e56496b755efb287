package ports

import (
	"context"

	"storefront-tracker/internal/features/tracking/domain"
)

// FeedProvider defines the interface for live carrier tracking sources.
type FeedProvider interface {
	// GetTrackingFeed retrieves the carrier history of an order. Orders without carrier
	// data yield an empty feed, not an error.
	GetTrackingFeed(ctx context.Context, orderID string) (*domain.TrackingFeed, error)
}
