package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testProducts() []Product {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{ID: 1, Name: "rug", SellingPrice: decimal.NewFromInt(300), Quantity: 4,
			CreatedAt: base, Category: &CategoryRef{ID: 3, Name: "Prayer Rugs"}},
		{ID: 2, Name: "lantern", SellingPrice: decimal.NewFromInt(150), Quantity: 0,
			CreatedAt: base.Add(48 * time.Hour), Category: &CategoryRef{ID: 4, Name: "Lanterns"}},
		{ID: 3, Name: "frame", SellingPrice: decimal.NewFromInt(700), Quantity: 2,
			CreatedAt: base.Add(24 * time.Hour), Category: &CategoryRef{ID: 2, Name: "Calligraphy Frames"}},
		{ID: 4, Name: "tasbih", SellingPrice: decimal.NewFromInt(150), Quantity: 9,
			CreatedAt: base.Add(72 * time.Hour), Category: &CategoryRef{ID: 5, Name: "Tasbih & Accessories"}},
	}
}

func ids(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestApply_Sorting(t *testing.T) {
	tests := []struct {
		name     string
		order    SortOrder
		expected []int
	}{
		{"relevance_keeps_backend_order", SortRelevance, []int{1, 2, 3, 4}},
		{"price_asc_stable_on_ties", SortPriceAsc, []int{2, 4, 1, 3}},
		{"price_desc", SortPriceDesc, []int{3, 1, 2, 4}},
		{"newest_first", SortNewest, []int{4, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(testProducts(), Filter{}, tt.order, 1, 0))
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("got %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestApply_Filter(t *testing.T) {
	got := Apply(testProducts(), Filter{InStockOnly: true}, SortRelevance, 1, 0)
	for _, p := range got {
		if p.OutOfStock() {
			t.Errorf("InStockOnly filter leaked out-of-stock product %d", p.ID)
		}
	}

	got = Apply(testProducts(), Filter{CategoryID: 4}, SortRelevance, 1, 0)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Category filter = %v, want [2]", ids(got))
	}

	got = Apply(testProducts(), Filter{
		MinPrice: decimal.NewFromInt(200),
		MaxPrice: decimal.NewFromInt(500),
	}, SortRelevance, 1, 0)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Price range filter = %v, want [1]", ids(got))
	}
}

func TestPaginate(t *testing.T) {
	products := testProducts()

	tests := []struct {
		name     string
		page     int
		limit    int
		expected []int
	}{
		{"first_page", 1, 2, []int{1, 2}},
		{"second_page", 2, 2, []int{3, 4}},
		{"partial_last_page", 2, 3, []int{4}},
		{"page_past_end_is_empty", 5, 2, []int{}},
		{"zero_limit_returns_all", 1, 0, []int{1, 2, 3, 4}},
		{"page_below_one_clamps", 0, 2, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Paginate(products, tt.page, tt.limit))
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("got %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil); got != 0 {
		t.Errorf("AverageRating(nil) = %f, want 0", got)
	}
	reviews := []Review{{Rating: 5}, {Rating: 4}, {Rating: 3}}
	if got := AverageRating(reviews); got != 4 {
		t.Errorf("AverageRating = %f, want 4", got)
	}
}
