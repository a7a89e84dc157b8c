package storefront

import (
	"context"

	"github.com/shopspring/decimal"
)

// CartLine is one backend cart line, mirrored locally by pkg/cart.
type CartLine struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// cartEnvelope tolerates {cart:[...]} and {data:[...]}.
type cartEnvelope struct {
	Cart []CartLine `json:"cart"`
	Data []CartLine `json:"data"`
}

func (e cartEnvelope) lines() []CartLine {
	if e.Cart != nil {
		return e.Cart
	}
	return e.Data
}

// FetchCart returns the server-side cart of the logged-in user.
func (s *Service) FetchCart(ctx context.Context) ([]CartLine, error) {
	var envelope cartEnvelope
	if err := s.api.GetJSON(ctx, "/user/get-cart", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.lines(), nil
}

// PushCart replaces the server-side cart with the given lines.
func (s *Service) PushCart(ctx context.Context, lines []CartLine) error {
	body := map[string]any{"items": lines}
	return s.api.PostJSON(ctx, "/user/update-cart", body, nil)
}
