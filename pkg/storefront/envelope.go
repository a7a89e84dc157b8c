package storefront

import (
	"encoding/json"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
)

// listEnvelope tolerates the three listing response shapes the backend
// uses: {products:[...]}, {data:[...]}, and {data:{Products:[...]}}.
type listEnvelope struct {
	Status   json.RawMessage   `json:"status"`
	Products []catalog.Product `json:"products"`
	Data     json.RawMessage   `json:"data"`
}

// products resolves the envelope to the product list, whichever field
// carries it.
func (e listEnvelope) products() []catalog.Product {
	if e.Products != nil {
		return e.Products
	}
	if len(e.Data) == 0 {
		return nil
	}

	var direct []catalog.Product
	if err := json.Unmarshal(e.Data, &direct); err == nil {
		return direct
	}

	var nested struct {
		Products []catalog.Product `json:"Products"`
	}
	if err := json.Unmarshal(e.Data, &nested); err == nil {
		return nested.Products
	}
	return nil
}

// detailEnvelope tolerates the product-by-id shapes: data as a one-element
// product array, or data as a product-with-specifications object.
type detailEnvelope struct {
	Status json.RawMessage `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (e detailEnvelope) detail() (catalog.ProductDetail, bool) {
	if len(e.Data) == 0 {
		return catalog.ProductDetail{}, false
	}

	var list []catalog.Product
	if err := json.Unmarshal(e.Data, &list); err == nil {
		if len(list) == 0 {
			return catalog.ProductDetail{}, false
		}
		return catalog.ProductDetail{Product: list[0]}, true
	}

	var full struct {
		catalog.Product
		Specifications []catalog.Specification `json:"specifications"`
	}
	if err := json.Unmarshal(e.Data, &full); err == nil && full.ID != 0 {
		return catalog.ProductDetail{
			Product:        full.Product,
			Specifications: full.Specifications,
		}, true
	}
	return catalog.ProductDetail{}, false
}

// reviewsEnvelope tolerates {reviews:[...]} and {data:[...]}.
type reviewsEnvelope struct {
	Reviews []catalog.Review `json:"reviews"`
	Data    []catalog.Review `json:"data"`
}

func (e reviewsEnvelope) reviews() []catalog.Review {
	if e.Reviews != nil {
		return e.Reviews
	}
	return e.Data
}
