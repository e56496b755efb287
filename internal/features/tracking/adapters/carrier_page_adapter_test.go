package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/proxy"
	"storefront-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCarrierResponse_Events(t *testing.T) {
	body := []byte(`{"events":[
		{"description":"Order Packed ","city":"Pune","date":"02/03/2024 10:15"},
		{"status":"Handed to Delivery Partner","location":"Mumbai Hub","timestamp":"2024-03-03T08:00:00+05:30"},
		{"status":"Out for Delivery","time":"ignored","date":"tomorrow-ish"}
	]}`)

	feed, err := ParseCarrierResponse(body)
	require.NoError(t, err)
	require.Len(t, feed.TrackingHistory, 3)

	assert.Equal(t, domain.TrackingEvent{Status: "Order Packed", Location: "Pune", Timestamp: "2024-03-02T10:15:00Z"}, feed.TrackingHistory[0])
	assert.Equal(t, "Mumbai Hub", feed.TrackingHistory[1].Location)
	assert.Equal(t, "2024-03-03T02:30:00Z", feed.TrackingHistory[1].Timestamp)
	assert.Equal(t, "tomorrow-ish", feed.TrackingHistory[2].Timestamp)
}

func TestParseCarrierResponse_NativeShape(t *testing.T) {
	body := []byte(`{"trackingHistory":[{"status":"Out for Delivery","timestamp":"05 Mar 2024"}]}`)

	feed, err := ParseCarrierResponse(body)
	require.NoError(t, err)
	require.Len(t, feed.TrackingHistory, 1)
	assert.Equal(t, "05 Mar 2024", feed.TrackingHistory[0].Timestamp)
}

func TestParseCarrierResponse_Errors(t *testing.T) {
	_, err := ParseCarrierResponse([]byte("  "))
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)

	_, err = ParseCarrierResponse([]byte("<html>"))
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
}

func TestCarrierPageAdapter_PageFor(t *testing.T) {
	templated := NewCarrierPageAdapter(config.CarrierConfig{PageURL: "https://carrier.test/track?ref=%s"}, proxy.Settings{})
	assert.Equal(t, "https://carrier.test/track?ref=ord%201", templated.pageFor("ord 1"))

	plain := NewCarrierPageAdapter(config.CarrierConfig{PageURL: "https://carrier.test/track/"}, proxy.Settings{})
	assert.Equal(t, "https://carrier.test/track/ord-1", plain.pageFor("ord-1"))
}

// TestCarrierPageAdapter_Browser drives a real headless browser and only runs when
// CARRIER_BROWSER_TEST is set.
func TestCarrierPageAdapter_Browser(t *testing.T) {
	if os.Getenv("CARRIER_BROWSER_TEST") == "" {
		t.Skip("set CARRIER_BROWSER_TEST to run browser tests")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tracking/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"description":"Out for Delivery","date":"2024-03-05"}]}`))
	})
	mux.HandleFunc("/track/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><script>fetch("/api/tracking/" + location.pathname.split("/").pop())</script></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	adapter := NewCarrierPageAdapter(config.CarrierConfig{
		PageURL:        srv.URL + "/track/%s",
		APIPattern:     "*/api/tracking/*",
		TimeoutSeconds: 30,
	}, proxy.Settings{})

	feed, err := adapter.GetTrackingFeed(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, feed.TrackingHistory, 1)
	assert.Equal(t, "Out for Delivery", feed.TrackingHistory[0].Status)
	assert.Equal(t, "2024-03-05T00:00:00Z", feed.TrackingHistory[0].Timestamp)
}

func TestCarrierPageAdapter_PageFor_KeepsPercentEscapes(t *testing.T) {
	adapter := NewCarrierPageAdapter(config.CarrierConfig{PageURL: "https://carrier.test/track%20page?ref=%s&lang=en%2Dus"}, proxy.Settings{})
	assert.Equal(t, "https://carrier.test/track%20page?ref=ord-1&lang=en%2Dus", adapter.pageFor("ord-1"))
}

func TestAwaitCapture_LoadFailureReturnsImmediately(t *testing.T) {
	results := make(chan captureResult, 1)
	loadErr := errors.New("connection reset")
	offerCapture(results, captureResult{err: loadErr})
	offerCapture(results, captureResult{body: []byte(`{"events":[]}`)})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	body, err := awaitCapture(ctx, results)
	assert.ErrorIs(t, err, loadErr)
	assert.Nil(t, body)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAwaitCapture_Body(t *testing.T) {
	results := make(chan captureResult, 1)
	offerCapture(results, captureResult{body: []byte(`{"events":[]}`)})

	body, err := awaitCapture(context.Background(), results)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(body))
}

func TestAwaitCapture_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := awaitCapture(ctx, make(chan captureResult))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
