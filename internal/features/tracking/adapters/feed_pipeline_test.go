package adapter

import (
	"context"
	"testing"
	"time"

	"storefront-tracker/internal/core/cache"
	"storefront-tracker/internal/features/tracking/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisAdapter("redis://"+mr.Addr(), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	return redisCache
}

func TestFeedPipeline_FallbackResultIsCached(t *testing.T) {
	backend := new(MockFeedProvider)
	carrier := new(MockFeedProvider)
	backend.On("GetTrackingFeed", mock.Anything, "ord-1").Return(&domain.TrackingFeed{}, nil).Once()
	carrier.On("GetTrackingFeed", mock.Anything, "ord-1").Return(sampleFeed(), nil).Once()

	feeds := NewFeedPipeline(backend, carrier, newTestCache(t), time.Minute)

	for i := 0; i < 5; i++ {
		feed, err := feeds.GetTrackingFeed(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, sampleFeed(), feed)
	}

	backend.AssertNumberOfCalls(t, "GetTrackingFeed", 1)
	carrier.AssertNumberOfCalls(t, "GetTrackingFeed", 1)
}

func TestFeedPipeline_EmptyChainIsCached(t *testing.T) {
	backend := new(MockFeedProvider)
	carrier := new(MockFeedProvider)
	backend.On("GetTrackingFeed", mock.Anything, "ord-2").Return(&domain.TrackingFeed{}, nil).Once()
	carrier.On("GetTrackingFeed", mock.Anything, "ord-2").Return(&domain.TrackingFeed{}, nil).Once()

	feeds := NewFeedPipeline(backend, carrier, newTestCache(t), time.Minute)

	for i := 0; i < 3; i++ {
		feed, err := feeds.GetTrackingFeed(context.Background(), "ord-2")
		require.NoError(t, err)
		assert.True(t, feed.IsEmpty())
	}

	carrier.AssertNumberOfCalls(t, "GetTrackingFeed", 1)
}

func TestFeedPipeline_WithoutCacheOrFallback(t *testing.T) {
	backend := new(MockFeedProvider)
	backend.On("GetTrackingFeed", mock.Anything, "ord-3").Return(sampleFeed(), nil)

	feeds := NewFeedPipeline(backend, nil, nil, time.Minute)
	assert.Same(t, backend, feeds)

	feed, err := feeds.GetTrackingFeed(context.Background(), "ord-3")
	require.NoError(t, err)
	assert.Equal(t, sampleFeed(), feed)
}
