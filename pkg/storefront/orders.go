package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one product line of an order.
type OrderLine struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderInput is a checkout submission.
type OrderInput struct {
	AddressID int         `json:"address_id"`
	Lines     []OrderLine `json:"items"`

	// IdempotencyKey guards against duplicate submissions when a
	// checkout is retried. Filled automatically when empty.
	IdempotencyKey string `json:"idempotency_key"`
}

// Order is a placed order as returned by the backend.
type Order struct {
	ID        int             `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Lines     []OrderLine     `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

// orderEnvelope tolerates {order:{...}} and {data:{...}}.
type orderEnvelope struct {
	Order *Order `json:"order"`
	Data  *Order `json:"data"`
}

func (e orderEnvelope) order() Order {
	if e.Order != nil {
		return *e.Order
	}
	if e.Data != nil {
		return *e.Data
	}
	return Order{}
}

// CreateOrder places an order.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput) (Order, error) {
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = uuid.NewString()
	}

	var envelope orderEnvelope
	if err := s.api.PostJSON(ctx, "/user/create-order", input, &envelope); err != nil {
		return Order{}, err
	}
	return envelope.order(), nil
}

// CancelOrder cancels a placed order.
func (s *Service) CancelOrder(ctx context.Context, orderID int) error {
	body := map[string]int{"order_id": orderID}
	return s.api.PostJSON(ctx, "/user/cancel-order", body, nil)
}
