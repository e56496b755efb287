package engine

import (
	"fmt"
	"time"

	"storefront-tracker/internal/core/config"
)

// StageCount is the fixed length of every derived stage sequence.
const StageCount = 5

// Stage indexes into the derived sequence.
const (
	StageOrdered = iota
	StagePacked
	StageDeliveryPartner
	StageOutForDelivery
	StageFinal
)

// StageTemplate is the label and default message of a stage.
type StageTemplate struct {
	Label   string
	Message string
}

// Config holds the vocabulary and windows used by the Engine.
type Config struct {
	// ExchangeReturnWindowDays is how long after delivery exchanges and returns are accepted.
	ExchangeReturnWindowDays int
	// Stages lists the five stages in display order. The first message gets " on <date>"
	// appended when the order creation time is known.
	Stages [StageCount]StageTemplate
	// DeliveredLabel replaces the final stage label once the order is delivered.
	DeliveredLabel string
	// DeliveredMessage is the final stage message once the order is delivered.
	DeliveredMessage string
	// EstimatedMessage is the final stage message when an estimated delivery date exists.
	EstimatedMessage string
	// EstimatePendingMessage is the final stage message when no estimate exists.
	EstimatePendingMessage string
	// DateLayout is the layout used to render stage dates.
	DateLayout string
	// Location is the zone stage dates are rendered in.
	Location *time.Location
}

// DefaultConfig returns the storefront's standard tracking vocabulary.
func DefaultConfig() Config {
	return Config{
		ExchangeReturnWindowDays: 7,
		Stages: [StageCount]StageTemplate{
			{Label: "Item Ordered", Message: "Your order has been placed"},
			{Label: "Order Packed", Message: "Seller has packed your item"},
			{Label: "Delivery Partner", Message: "Your item has been handed over to the delivery partner"},
			{Label: "Out for Delivery", Message: "Your item is out for delivery"},
			{Label: "Estimated delivery"},
		},
		DeliveredLabel:         "Item Delivered",
		DeliveredMessage:       "Order delivered as per the estimated delivery",
		EstimatedMessage:       "Order will be in your in any time to your doorstep",
		EstimatePendingMessage: "Estimated delivery date pending",
		DateLayout:             "02 Jan 2006",
		Location:               time.UTC,
	}
}

// FromAppConfig builds an engine Config from the application settings. The window must
// be positive; a zero window is rejected rather than silently replaced by the default.
func FromAppConfig(cfg config.TrackingConfig) (Config, error) {
	c := DefaultConfig()

	if cfg.ExchangeReturnWindowDays <= 0 {
		return Config{}, fmt.Errorf("exchange/return window must be at least one day: %d", cfg.ExchangeReturnWindowDays)
	}
	c.ExchangeReturnWindowDays = cfg.ExchangeReturnWindowDays
	if cfg.DateLayout != "" {
		c.DateLayout = cfg.DateLayout
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		c.Location = loc
	}

	return c, nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.ExchangeReturnWindowDays == 0 {
		c.ExchangeReturnWindowDays = d.ExchangeReturnWindowDays
	}
	for i := range c.Stages {
		if c.Stages[i].Label == "" {
			c.Stages[i].Label = d.Stages[i].Label
		}
		if c.Stages[i].Message == "" {
			c.Stages[i].Message = d.Stages[i].Message
		}
	}
	if c.DeliveredLabel == "" {
		c.DeliveredLabel = d.DeliveredLabel
	}
	if c.DeliveredMessage == "" {
		c.DeliveredMessage = d.DeliveredMessage
	}
	if c.EstimatedMessage == "" {
		c.EstimatedMessage = d.EstimatedMessage
	}
	if c.EstimatePendingMessage == "" {
		c.EstimatePendingMessage = d.EstimatePendingMessage
	}
	if c.DateLayout == "" {
		c.DateLayout = d.DateLayout
	}
	if c.Location == nil {
		c.Location = d.Location
	}

	return c
}

// ExchangeReturnWindow returns the exchange/return window as a duration.
func (c Config) ExchangeReturnWindow() time.Duration {
	return time.Duration(c.ExchangeReturnWindowDays) * 24 * time.Hour
}
