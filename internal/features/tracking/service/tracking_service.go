package service

import (
	"context"
	"fmt"
	"time"

	"storefront-tracker/internal/core/logger"
	orderdomain "storefront-tracker/internal/features/orders/domain"
	orderports "storefront-tracker/internal/features/orders/ports"
	"storefront-tracker/internal/features/tracking/domain"
	"storefront-tracker/internal/features/tracking/engine"
	"storefront-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TrackingService combines an order snapshot with its live carrier feed.
type TrackingService struct {
	orders orderports.OrderProvider
	feeds  ports.FeedProvider
	engine *engine.Engine
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes a TrackingService.
type Option func(*TrackingService)

// WithClock replaces the wall clock used for eligibility windows.
func WithClock(now func() time.Time) Option {
	return func(s *TrackingService) {
		s.now = now
	}
}

// NewTrackingService creates a new TrackingService. feeds may be nil, in which case
// stages are derived from the order status alone.
func NewTrackingService(orders orderports.OrderProvider, feeds ports.FeedProvider, eng *engine.Engine, opts ...Option) *TrackingService {
	s := &TrackingService{
		orders: orders,
		feeds:  feeds,
		engine: eng,
		now:    time.Now,
		logger: logger.Named("tracking.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTrackingView loads the order and its feed concurrently and derives the view.
// The order is required; a failing feed only degrades the stages to status-only.
func (s *TrackingService) GetTrackingView(ctx context.Context, orderID string) (*domain.TrackingView, error) {
	var (
		order *orderdomain.Order
		feed  *domain.TrackingFeed
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o, err := s.loadOrder(gctx, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})

	if s.feeds != nil {
		g.Go(func() error {
			f, err := s.feeds.GetTrackingFeed(gctx, orderID)
			if err != nil {
				s.logger.Warn("Tracking feed unavailable, using order status only",
					zap.String("order_id", orderID),
					zap.Error(err),
				)
				return nil
			}
			feed = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := s.engine.View(*order, feed, s.now())
	return &view, nil
}

// GetEligibility answers which customer actions the order currently allows.
func (s *TrackingService) GetEligibility(ctx context.Context, orderID string) (*domain.Eligibility, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	eligibility := s.engine.Evaluate(*order, s.now())
	return &eligibility, nil
}

func (s *TrackingService) loadOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrOrderNotFound, orderID)
	}

	if order.OrderStatus == orderdomain.OrderStatusDelivered && order.DeliveredAt == nil {
		s.logger.Warn("Delivered order has no delivery timestamp", zap.String("order_id", orderID))
	}
	if !order.OrderStatus.IsKnown() {
		s.logger.Warn("Unknown order status", zap.String("order_id", orderID), zap.String("status", string(order.OrderStatus)))
	}

	return order, nil
}
