package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/logger"
	"storefront-tracker/internal/core/proxy"
	"storefront-tracker/internal/features/tracking/domain"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// carrierDateLayouts are the timestamp formats seen on carrier APIs, tried in order.
var carrierDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// CarrierPageAdapter scrapes the carrier's public tracking page with a headless browser
// and captures the JSON the page loads from the carrier API.
type CarrierPageAdapter struct {
	pageURL    string
	apiPattern string
	timeout    time.Duration
	proxy      proxy.Settings
	logger     *zap.Logger
}

// NewCarrierPageAdapter creates a new CarrierPageAdapter.
func NewCarrierPageAdapter(cfg config.CarrierConfig, proxySettings proxy.Settings) *CarrierPageAdapter {
	return &CarrierPageAdapter{
		pageURL:    cfg.PageURL,
		apiPattern: cfg.APIPattern,
		timeout:    cfg.Timeout(),
		proxy:      proxySettings,
		logger:     logger.Named("tracking.carrier"),
	}
}

// carrierResponse covers both the native feed shape and the flat event list most carriers return.
type carrierResponse struct {
	TrackingHistory []domain.TrackingEvent `json:"trackingHistory"`
	Events          []carrierEvent         `json:"events"`
}

type carrierEvent struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
	City        string `json:"city"`
	Timestamp   string `json:"timestamp"`
	Date        string `json:"date"`
}

// GetTrackingFeed opens the carrier page for the order and waits for the carrier API response.
func (a *CarrierPageAdapter) GetTrackingFeed(ctx context.Context, orderID string) (*domain.TrackingFeed, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var proxyAddr string
	if a.proxy.NeedsForwarder() {
		forwarder, err := proxy.NewForwardingProxy(a.proxy.FullURL())
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		proxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		defer forwarder.Stop()
	} else if a.proxy.HasProxy() {
		proxyAddr = a.proxy.HostPort()
	}

	target := a.pageFor(orderID)
	a.logger.Debug("Scraping carrier page",
		zap.String("order_id", orderID),
		zap.String("url", target),
		zap.Bool("proxy_enabled", proxyAddr != ""),
	)

	body, err := a.capture(ctx, target, proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}

	return ParseCarrierResponse(body)
}

func (a *CarrierPageAdapter) pageFor(orderID string) string {
	escaped := url.PathEscape(orderID)
	if strings.Contains(a.pageURL, "%s") {
		return strings.Replace(a.pageURL, "%s", escaped, 1)
	}
	return strings.TrimRight(a.pageURL, "/") + "/" + escaped
}

func (a *CarrierPageAdapter) capture(ctx context.Context, target, proxyAddr string) ([]byte, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if proxyAddr != "" {
		l = l.Proxy(proxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	client := http.DefaultClient
	if proxyAddr != "" {
		if proxyURL, err := url.Parse(proxyAddr); err == nil {
			client = &http.Client{
				Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
				Timeout:   a.timeout,
			}
		}
	}

	router := page.HijackRequests()
	defer router.Stop()

	results := make(chan captureResult, 1)
	err = router.Add(a.apiPattern, "", func(h *rod.Hijack) {
		if err := h.LoadResponse(client, true); err != nil {
			a.logger.Error("Failed to load carrier response", zap.Error(err))
			offerCapture(results, captureResult{err: fmt.Errorf("failed to load carrier response: %w", err)})
			return
		}
		offerCapture(results, captureResult{body: []byte(h.Response.Body())})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register hijack pattern: %w", err)
	}

	go router.Run()

	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	return awaitCapture(ctx, results)
}

// captureResult is the outcome of the first hijacked carrier API call.
type captureResult struct {
	body []byte
	err  error
}

// offerCapture keeps the first result and drops later ones.
func offerCapture(results chan<- captureResult, r captureResult) {
	select {
	case results <- r:
	default:
	}
}

// awaitCapture returns as soon as the hijack reports a body or a failure.
func awaitCapture(ctx context.Context, results <-chan captureResult) ([]byte, error) {
	select {
	case r := <-results:
		return r.body, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for carrier response: %w", ctx.Err())
	}
}

// ParseCarrierResponse maps a captured carrier API payload into a feed. Timestamps in a
// known layout are normalized to RFC3339; anything else is kept verbatim.
func ParseCarrierResponse(body []byte) (*domain.TrackingFeed, error) {
	if strings.TrimSpace(string(body)) == "" {
		return nil, fmt.Errorf("%w: empty carrier response", domain.ErrFeedUnavailable)
	}

	var resp carrierResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse carrier response: %v", domain.ErrFeedUnavailable, err)
	}

	feed := &domain.TrackingFeed{TrackingHistory: make([]domain.TrackingEvent, 0, len(resp.TrackingHistory)+len(resp.Events))}
	feed.TrackingHistory = append(feed.TrackingHistory, resp.TrackingHistory...)

	for _, e := range resp.Events {
		status := e.Status
		if status == "" {
			status = e.Description
		}
		location := e.Location
		if location == "" {
			location = e.City
		}
		when := e.Timestamp
		if when == "" {
			when = e.Date
		}

		feed.TrackingHistory = append(feed.TrackingHistory, domain.TrackingEvent{
			Status:    strings.TrimSpace(status),
			Location:  strings.TrimSpace(location),
			Timestamp: normalizeCarrierTime(when),
		})
	}

	return feed, nil
}

func normalizeCarrierTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range carrierDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}
