package handler

import (
	"errors"

	"storefront-tracker/internal/core/logger"
	orderdomain "storefront-tracker/internal/features/orders/domain"
	orderhandler "storefront-tracker/internal/features/orders/handler"
	"storefront-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// GetTrackingView godoc
// @Summary Get the tracking view of an order
// @Description Derives the five delivery stages, action eligibility and first product for an order
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.TrackingView
// @Failure 404 {object} orderhandler.ErrorResponse
// @Failure 502 {object} orderhandler.ErrorResponse
// @Router /orders/{id}/tracking-view [get]
func (h *TrackingHandler) GetTrackingView(c *fiber.Ctx) error {
	orderID := c.Params("id")

	view, err := h.trackingService.GetTrackingView(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, orderID, err)
	}

	return c.JSON(view)
}

// GetEligibility godoc
// @Summary Get action eligibility of an order
// @Description Reports whether the order can be cancelled, exchanged or returned, and reviewed
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Eligibility
// @Failure 404 {object} orderhandler.ErrorResponse
// @Failure 502 {object} orderhandler.ErrorResponse
// @Router /orders/{id}/eligibility [get]
func (h *TrackingHandler) GetEligibility(c *fiber.Ctx) error {
	orderID := c.Params("id")

	eligibility, err := h.trackingService.GetEligibility(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, orderID, err)
	}

	return c.JSON(eligibility)
}

func (h *TrackingHandler) fail(c *fiber.Ctx, orderID string, err error) error {
	rayID := orderhandler.RayID(c)

	if errors.Is(err, orderdomain.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(orderhandler.ErrorResponse{
			Message: "Order not found",
			RayID:   rayID,
		})
	}

	logger.Get().Error("Tracking request failed",
		zap.String("order_id", orderID),
		zap.String("ray_id", rayID),
		zap.Error(err),
	)

	return c.Status(fiber.StatusBadGateway).JSON(orderhandler.ErrorResponse{
		Message: "Failed to fetch order",
		RayID:   rayID,
	})
}
