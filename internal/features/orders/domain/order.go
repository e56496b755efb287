package domain

import (
	"time"
)

// OrderStatus represents the lifecycle state reported by the storefront backend.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed and awaits confirmation.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the seller accepted the order.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing indicates the order is being packed.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order was handed to the delivery partner.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsKnown reports whether s is one of the six statuses the backend emits.
func (s OrderStatus) IsKnown() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Normalize maps unrecognized statuses to pending.
func (s OrderStatus) Normalize() OrderStatus {
	if s.IsKnown() {
		return s
	}
	return OrderStatusPending
}

// Order is a read-only snapshot of a customer order.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"id"`
	// OrderStatus drives stage derivation and action eligibility.
	OrderStatus OrderStatus `json:"orderStatus"`
	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"createdAt"`
	// EstimatedDelivery is the promised delivery date, if known.
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	// DeliveredAt is set once the order is delivered.
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	// Items are the purchased line items, in checkout order.
	Items []OrderItem `json:"items"`
	// ReviewSubmitted is true once the customer reviewed this order.
	ReviewSubmitted bool `json:"reviewSubmitted"`
}

// Product is the catalog reference carried by an order item.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// OrderItem represents an individual item within an order.
type OrderItem struct {
	// Product is the purchased product.
	Product Product `json:"product"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// Price is the unit price at checkout.
	Price float64 `json:"price"`
	// Size is the selected variant size, if any.
	Size string `json:"size,omitempty"`
	// Color is the selected variant color, if any.
	Color string `json:"color,omitempty"`
}
