package domain

import (
	orderdomain "storefront-tracker/internal/features/orders/domain"
)

// StageStatus is the progress of a single tracking stage.
type StageStatus string

const (
	// StageStatusCompleted marks a stage with evidence that it happened.
	StageStatusCompleted StageStatus = "completed"
	// StageStatusActive marks the stage currently in progress.
	StageStatusActive StageStatus = "active"
	// StageStatusPending marks a stage that has not started.
	StageStatusPending StageStatus = "pending"
)

// TrackingFeed is the live carrier history for an order.
type TrackingFeed struct {
	// TrackingHistory holds carrier events, oldest first.
	TrackingHistory []TrackingEvent `json:"trackingHistory"`
}

// IsEmpty reports whether the feed carries no events. A nil feed is empty.
func (f *TrackingFeed) IsEmpty() bool {
	return f == nil || len(f.TrackingHistory) == 0
}

// TrackingEvent is a single carrier scan.
type TrackingEvent struct {
	// Status is the carrier's free-text description of the scan.
	Status string `json:"status"`
	// Location is where the scan happened, if reported.
	Location string `json:"location,omitempty"`
	// Timestamp is the scan time as sent by the carrier.
	Timestamp string `json:"timestamp,omitempty"`
	// Date is the legacy name some carriers use instead of Timestamp.
	Date string `json:"date,omitempty"`
}

// When returns the event time, preferring Timestamp over Date.
func (e TrackingEvent) When() string {
	if e.Timestamp != "" {
		return e.Timestamp
	}
	return e.Date
}

// TrackingStage is one step of the customer-facing delivery narrative.
type TrackingStage struct {
	Label     string      `json:"label"`
	Status    StageStatus `json:"status"`
	Timestamp string      `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Eligibility gates the actions a customer may take on an order.
type Eligibility struct {
	CanCancel           bool `json:"canCancel"`
	CanExchangeOrReturn bool `json:"canExchangeOrReturn"`
	CanReview           bool `json:"canReview"`
}

// TrackingView is everything an order page needs to render tracking and action buttons.
type TrackingView struct {
	OrderID      string                  `json:"orderId"`
	OrderStatus  orderdomain.OrderStatus `json:"orderStatus"`
	Stages       []TrackingStage         `json:"stages"`
	Eligibility  Eligibility             `json:"eligibility"`
	FirstProduct *orderdomain.OrderItem  `json:"firstProduct,omitempty"`
}
