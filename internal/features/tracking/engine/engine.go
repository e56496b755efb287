// Package engine derives the customer-facing tracking stages and action eligibility of an
// order. Every function is a pure computation over the snapshot it is given: the engine
// keeps no state between calls, never mutates its inputs and never reads the clock.
package engine

import (
	"errors"
	"strings"
	"time"

	orderdomain "storefront-tracker/internal/features/orders/domain"
	"storefront-tracker/internal/features/tracking/domain"
)

// ErrEmptyOrder is returned when an order has no items to show.
var ErrEmptyOrder = errors.New("order has no items")

// Engine derives tracking views from order snapshots. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an Engine; zero fields of cfg fall back to DefaultConfig.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// progressFor returns the status-derived progress of every stage.
func progressFor(status orderdomain.OrderStatus) [StageCount]domain.StageStatus {
	const (
		c = domain.StageStatusCompleted
		a = domain.StageStatusActive
		p = domain.StageStatusPending
	)

	switch status {
	case orderdomain.OrderStatusProcessing:
		return [StageCount]domain.StageStatus{c, c, p, p, p}
	case orderdomain.OrderStatusShipped:
		return [StageCount]domain.StageStatus{c, c, c, a, p}
	case orderdomain.OrderStatusDelivered:
		return [StageCount]domain.StageStatus{c, c, c, c, c}
	default:
		// pending, confirmed, cancelled
		return [StageCount]domain.StageStatus{c, p, p, p, p}
	}
}

// DeriveTrackingStages returns the five tracking stages of order. A non-empty feed can
// upgrade stages to completed but never downgrades them. Unknown statuses are treated as
// pending.
func (e *Engine) DeriveTrackingStages(order orderdomain.Order, feed *domain.TrackingFeed) []domain.TrackingStage {
	status := order.OrderStatus.Normalize()
	progress := progressFor(status)

	stages := make([]domain.TrackingStage, StageCount)
	for i, tpl := range e.cfg.Stages {
		stages[i] = domain.TrackingStage{
			Label:   tpl.Label,
			Status:  progress[i],
			Message: tpl.Message,
		}
	}

	if !order.CreatedAt.IsZero() {
		stages[StageOrdered].Timestamp = order.CreatedAt.Format(time.RFC3339)
		stages[StageOrdered].Message += " on " + e.formatDate(order.CreatedAt)
	}

	final := &stages[StageFinal]
	switch {
	case status == orderdomain.OrderStatusDelivered:
		final.Label = e.cfg.DeliveredLabel
		final.Message = e.cfg.DeliveredMessage
		if order.DeliveredAt != nil {
			final.Timestamp = e.formatDate(*order.DeliveredAt)
		}
	case order.EstimatedDelivery != nil:
		final.Timestamp = e.formatDate(*order.EstimatedDelivery)
		final.Message = e.cfg.EstimatedMessage
	default:
		final.Message = e.cfg.EstimatePendingMessage
	}

	mergeFeed(stages, feed)

	return stages
}

// mergeFeed marks every stage matched by a carrier event as completed. Events are searched
// most recent first, so the latest matching scan supplies the timestamp.
func mergeFeed(stages []domain.TrackingStage, feed *domain.TrackingFeed) {
	if feed.IsEmpty() {
		return
	}

	history := feed.TrackingHistory
	for i := range stages {
		for j := len(history) - 1; j >= 0; j-- {
			event := history[j]
			if !MatchEventToStage(event, stages[i].Label) {
				continue
			}
			stages[i].Status = domain.StageStatusCompleted
			if when := event.When(); when != "" {
				stages[i].Timestamp = when
			}
			break
		}
	}
}

// MatchEventToStage reports whether a carrier event refers to the stage with the given label:
// the label must appear, case-insensitively, in the event status or location.
func MatchEventToStage(event domain.TrackingEvent, label string) bool {
	if label == "" {
		return false
	}
	needle := strings.ToLower(label)
	return strings.Contains(strings.ToLower(event.Status), needle) ||
		strings.Contains(strings.ToLower(event.Location), needle)
}

// CanCancelOrder reports whether the order has not shipped yet.
func (e *Engine) CanCancelOrder(order orderdomain.Order) bool {
	switch order.OrderStatus {
	case orderdomain.OrderStatusPending, orderdomain.OrderStatusConfirmed, orderdomain.OrderStatusProcessing:
		return true
	default:
		return false
	}
}

// CanExchangeOrReturn reports whether now is within the exchange/return window that opens
// at delivery. The window end is inclusive.
func (e *Engine) CanExchangeOrReturn(order orderdomain.Order, now time.Time) bool {
	if order.OrderStatus != orderdomain.OrderStatusDelivered || order.DeliveredAt == nil {
		return false
	}
	return now.Sub(*order.DeliveredAt) <= e.cfg.ExchangeReturnWindow()
}

// CanReviewOrder reports whether the order is delivered and still awaits a review.
func (e *Engine) CanReviewOrder(order orderdomain.Order) bool {
	return order.OrderStatus == orderdomain.OrderStatusDelivered && !order.ReviewSubmitted
}

// GetFirstProduct returns the first item of the order.
func (e *Engine) GetFirstProduct(order orderdomain.Order) (orderdomain.OrderItem, error) {
	if len(order.Items) == 0 {
		return orderdomain.OrderItem{}, ErrEmptyOrder
	}
	return order.Items[0], nil
}

// Evaluate computes every eligibility flag at instant now.
func (e *Engine) Evaluate(order orderdomain.Order, now time.Time) domain.Eligibility {
	return domain.Eligibility{
		CanCancel:           e.CanCancelOrder(order),
		CanExchangeOrReturn: e.CanExchangeOrReturn(order, now),
		CanReview:           e.CanReviewOrder(order),
	}
}

// View assembles the full tracking view. Orders without items get a nil FirstProduct.
func (e *Engine) View(order orderdomain.Order, feed *domain.TrackingFeed, now time.Time) domain.TrackingView {
	view := domain.TrackingView{
		OrderID:     order.ID,
		OrderStatus: order.OrderStatus,
		Stages:      e.DeriveTrackingStages(order, feed),
		Eligibility: e.Evaluate(order, now),
	}

	if item, err := e.GetFirstProduct(order); err == nil {
		view.FirstProduct = &item
	}

	return view
}

// FormatDate renders t the way stage dates are shown.
func (e *Engine) FormatDate(t time.Time) string {
	return e.formatDate(t)
}

func (e *Engine) formatDate(t time.Time) string {
	return t.In(e.cfg.Location).Format(e.cfg.DateLayout)
}
