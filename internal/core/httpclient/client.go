package httpclient

import (
	"net/http"
	"time"

	"storefront-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound request with its status and latency.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.Named("httpclient")

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// BearerRoundTripper adds an Authorization header to requests that do not carry one.
type BearerRoundTripper struct {
	// Token is the bearer token. Empty disables the header.
	Token string
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip clones the request when a header has to be added; the caller's request is never modified.
func (brt *BearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if brt.Token == "" || req.Header.Get("Authorization") != "" {
		return brt.Proxied.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+brt.Token)
	return brt.Proxied.RoundTrip(clone)
}

// Option customizes the client built by NewClient.
type Option func(*http.Client)

// WithBearerToken authenticates every request with the given token.
func WithBearerToken(token string) Option {
	return func(c *http.Client) {
		c.Transport = &BearerRoundTripper{Token: token, Proxied: c.Transport}
	}
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	client := &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}
