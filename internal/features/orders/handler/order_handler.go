package handler

import (
	"errors"
	"net/http"

	"storefront-tracker/internal/core/logger"
	"storefront-tracker/internal/features/orders/domain"
	"storefront-tracker/internal/features/orders/service"
	"storefront-tracker/internal/features/tracking/engine"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RayID returns the request ID set by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	if rayID, ok := c.Locals("requestid").(string); ok {
		return rayID
	}
	return "unknown"
}

// GetOrder returns the order snapshot.
// @Summary Get Order by ID
// @Description Fetch an order snapshot from the storefront backend.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.service.GetOrder(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// GetFirstProduct returns the first item of the order.
// @Summary Get the first product of an order
// @Description Returns the item shown on order cards, review and exchange dialogs.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderItem
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders/{id}/first-product [get]
func (h *OrderHandler) GetFirstProduct(c *fiber.Ctx) error {
	orderID := c.Params("id")

	item, err := h.service.FirstProduct(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(item)
}

func (h *OrderHandler) fail(c *fiber.Ctx, orderID string, err error) error {
	rayID := RayID(c)

	status := http.StatusBadGateway
	msg := "Failed to fetch order"

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		msg = "Order not found"
	case errors.Is(err, engine.ErrEmptyOrder):
		status = http.StatusUnprocessableEntity
		msg = "Order has no items"
	}

	logger.Get().Error("Order request failed",
		zap.String("order_id", orderID),
		zap.String("ray_id", rayID),
		zap.Int("status", status),
		zap.Error(err),
	)

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID,
	})
}
