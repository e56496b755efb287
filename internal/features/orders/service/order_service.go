package service

import (
	"context"
	"fmt"

	"storefront-tracker/internal/features/orders/domain"
	"storefront-tracker/internal/features/orders/ports"
	"storefront-tracker/internal/features/tracking/engine"
)

// OrderService handles the business logic for retrieving orders.
type OrderService struct {
	// provider is the interface for fetching order data from the backend.
	provider ports.OrderProvider
	// engine answers product and eligibility questions about an order.
	engine *engine.Engine
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(provider ports.OrderProvider, eng *engine.Engine) *OrderService {
	return &OrderService{
		provider: provider,
		engine:   eng,
	}
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	return order, nil
}

// FirstProduct returns the first item of an order, or engine.ErrEmptyOrder.
func (s *OrderService) FirstProduct(ctx context.Context, orderID string) (*domain.OrderItem, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item, err := s.engine.GetFirstProduct(*order)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	return &item, nil
}
