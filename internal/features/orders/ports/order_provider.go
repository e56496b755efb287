package ports

import (
	"context"

	"storefront-tracker/internal/features/orders/domain"
)

// OrderProvider defines the interface for retrieving orders from the storefront backend.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// GetOrder retrieves an order by its identifier. A missing order yields an error
	// wrapping ErrOrderNotFound.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
