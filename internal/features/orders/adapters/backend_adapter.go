package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/httpclient"
	"storefront-tracker/internal/core/logger"
	"storefront-tracker/internal/features/orders/domain"

	"go.uber.org/zap"
)

// BackendAdapter implements the OrderProvider interface using the storefront REST API.
type BackendAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the backend API root without a trailing slash.
	baseURL string
}

// NewBackendAdapter creates a new instance of BackendAdapter.
func NewBackendAdapter(cfg config.BackendConfig) *BackendAdapter {
	return &BackendAdapter{
		client:  httpclient.NewClient(cfg.Timeout(), httpclient.WithBearerToken(cfg.Token)),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

// GetOrder fetches an order from the backend and maps it to the domain entity.
func (a *BackendAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s", a.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("backend API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	raw, err := decodeOrder(body)
	if err != nil {
		return nil, err
	}

	return mapToDomain(raw, orderID), nil
}

// HealthCheck verifies that the backend API is reachable.
func (a *BackendAdapter) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// decodeOrder accepts both a bare order object and an {"order": {...}} envelope.
func decodeOrder(body []byte) (backendOrder, error) {
	var envelope struct {
		Order *backendOrder `json:"order"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return backendOrder{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Order != nil {
		return *envelope.Order, nil
	}

	var order backendOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return backendOrder{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return order, nil
}

// mapToDomain converts a raw backend order into a domain Order entity.
func mapToDomain(o backendOrder, requestedID string) *domain.Order {
	id := o.ID
	if id == "" {
		id = o.MongoID
	}
	if id == "" {
		id = requestedID
	}

	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(o.OrderStatus)))
	if !status.IsKnown() {
		logger.Named("orders.backend").Warn("Unrecognized order status",
			zap.String("order_id", id),
			zap.String("status", o.OrderStatus),
		)
	}

	return &domain.Order{
		ID:                id,
		OrderStatus:       status,
		CreatedAt:         o.CreatedAt.value(),
		EstimatedDelivery: o.EstimatedDelivery.ptr(),
		DeliveredAt:       o.DeliveredAt.ptr(),
		Items:             mapItems(o.Items),
		ReviewSubmitted:   o.ReviewSubmitted,
	}
}

// mapItems converts backend line items to domain OrderItems.
func mapItems(items []backendItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))

	for _, item := range items {
		product := domain.Product{
			ID:    item.Product.ID,
			Name:  item.Product.Name,
			Image: item.Product.Image,
		}
		if product.ID == "" {
			product.ID = item.Product.MongoID
		}
		if product.Image == "" && len(item.Product.Images) > 0 {
			product.Image = item.Product.Images[0]
		}

		out = append(out, domain.OrderItem{
			Product:  product,
			Quantity: item.Quantity,
			Price:    item.Price,
			Size:     item.Size,
			Color:    item.Color,
		})
	}

	return out
}

// internal structs for mapping

// backendOrder represents the JSON structure of an order from the storefront backend.
type backendOrder struct {
	ID                string        `json:"id"`
	MongoID           string        `json:"_id"`
	OrderStatus       string        `json:"orderStatus"`
	CreatedAt         backendTime   `json:"createdAt"`
	EstimatedDelivery backendTime   `json:"estimatedDelivery"`
	DeliveredAt       backendTime   `json:"deliveredAt"`
	Items             []backendItem `json:"items"`
	ReviewSubmitted   bool          `json:"reviewSubmitted"`
}

// backendItem represents a line item; product is populated by the backend.
type backendItem struct {
	Product  backendProduct `json:"product"`
	Quantity int            `json:"quantity"`
	Price    float64        `json:"price"`
	Size     string         `json:"size"`
	Color    string         `json:"color"`
}

type backendProduct struct {
	ID      string   `json:"id"`
	MongoID string   `json:"_id"`
	Name    string   `json:"name"`
	Image   string   `json:"image"`
	Images  []string `json:"images"`
}

// backendTime parses the date formats emitted by the backend. Unparseable values decode
// to the zero time rather than failing the whole order.
type backendTime struct {
	t time.Time
}

var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (bt *backendTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		bt.t = time.Time{}
		return nil
	}

	for _, layout := range backendTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			bt.t = parsed
			return nil
		}
	}

	logger.Named("orders.backend").Warn("Failed to parse date", zap.String("date", s))
	bt.t = time.Time{}
	return nil
}

func (bt backendTime) value() time.Time {
	return bt.t
}

func (bt backendTime) ptr() *time.Time {
	if bt.t.IsZero() {
		return nil
	}
	t := bt.t
	return &t
}
