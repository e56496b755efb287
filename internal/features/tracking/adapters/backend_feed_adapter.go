package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/httpclient"
	"storefront-tracker/internal/features/tracking/domain"
)

// BackendFeedAdapter reads tracking feeds from the storefront backend.
type BackendFeedAdapter struct {
	client  *http.Client
	baseURL string
}

// NewBackendFeedAdapter creates a new BackendFeedAdapter.
func NewBackendFeedAdapter(cfg config.BackendConfig) *BackendFeedAdapter {
	return &BackendFeedAdapter{
		client:  httpclient.NewClient(cfg.Timeout(), httpclient.WithBearerToken(cfg.Token)),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

// GetTrackingFeed calls GET /orders/{id}/tracking. A 404 means the order has not been
// handed to a carrier yet and yields an empty feed.
func (a *BackendFeedAdapter) GetTrackingFeed(ctx context.Context, orderID string) (*domain.TrackingFeed, error) {
	endpoint := fmt.Sprintf("%s/orders/%s/tracking", a.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &domain.TrackingFeed{}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: backend returned status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}

	var feed domain.TrackingFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrFeedUnavailable, err)
	}

	return &feed, nil
}
