package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-tracker/internal/features/orders/domain"
	"storefront-tracker/internal/features/orders/service"
	"storefront-tracker/internal/features/tracking/engine"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderProvider is a mock implementation of ports.OrderProvider.
type MockOrderProvider struct {
	mock.Mock
}

func (m *MockOrderProvider) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func setupApp(provider *MockOrderProvider) *fiber.App {
	svc := service.NewOrderService(provider, engine.New(engine.DefaultConfig()))
	h := NewOrderHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/orders/:id", h.GetOrder)
	app.Get("/orders/:id/first-product", h.GetFirstProduct)
	return app
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := new(MockOrderProvider)
		provider.On("GetOrder", mock.Anything, "ord_1").Return(&domain.Order{
			ID:          "ord_1",
			OrderStatus: domain.OrderStatusShipped,
		}, nil).Once()

		resp, err := setupApp(provider).Test(httptest.NewRequest("GET", "/orders/ord_1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var order domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
		assert.Equal(t, "ord_1", order.ID)
		assert.Equal(t, domain.OrderStatusShipped, order.OrderStatus)
		provider.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		provider := new(MockOrderProvider)
		provider.On("GetOrder", mock.Anything, "ghost").Return(nil, domain.ErrOrderNotFound).Once()

		resp, err := setupApp(provider).Test(httptest.NewRequest("GET", "/orders/ghost", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var errResp ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "Order not found", errResp.Message)
		assert.Equal(t, "test-ray-id", errResp.RayID)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		provider := new(MockOrderProvider)
		provider.On("GetOrder", mock.Anything, "ord_1").Return(nil, errors.New("connection refused")).Once()

		resp, err := setupApp(provider).Test(httptest.NewRequest("GET", "/orders/ord_1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestOrderHandler_GetFirstProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := new(MockOrderProvider)
		provider.On("GetOrder", mock.Anything, "ord_1").Return(&domain.Order{
			ID:    "ord_1",
			Items: []domain.OrderItem{{Product: domain.Product{ID: "p1", Name: "Linen Shirt"}, Quantity: 1}},
		}, nil).Once()

		resp, err := setupApp(provider).Test(httptest.NewRequest("GET", "/orders/ord_1/first-product", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var item domain.OrderItem
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
		assert.Equal(t, "Linen Shirt", item.Product.Name)
	})

	t.Run("EmptyOrder", func(t *testing.T) {
		provider := new(MockOrderProvider)
		provider.On("GetOrder", mock.Anything, "ord_2").Return(&domain.Order{ID: "ord_2"}, nil).Once()

		resp, err := setupApp(provider).Test(httptest.NewRequest("GET", "/orders/ord_2/first-product", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var errResp ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "Order has no items", errResp.Message)
	})
}

func TestRayID_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RayID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "unknown", string(body))
}
