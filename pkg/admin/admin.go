// Package admin is the back-office client: login, category and product
// management, order handling. Product mutations invalidate the shared
// product cache so customer listings pick the change up on the next
// refresh.
package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/faizansiddqui/storefront-client/pkg/cache"
	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/client"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

// Service is the admin back-office API client.
type Service struct {
	api    *client.Client
	cache  *cache.Cache
	logger zerolog.Logger
}

// New creates an admin service. productCache may be nil when the admin
// console runs without a customer cache to invalidate.
func New(api *client.Client, productCache *cache.Cache) *Service {
	return &Service{
		api:    api,
		cache:  productCache,
		logger: logging.NewLogger("admin"),
	}
}

// Login authenticates the admin. The session cookie is kept by the
// client's cookie jar.
func (s *Service) Login(ctx context.Context, userName, password string) error {
	body := map[string]string{"userName": userName, "password": password}
	if err := s.api.PostJSON(ctx, "/admin/login", body, nil); err != nil {
		return fmt.Errorf("admin login: %w", err)
	}
	s.logger.Info().Str("user", userName).Msg("Admin logged in")
	return nil
}

// AddCategory creates a product category. The endpoint path keeps the
// backend's spelling.
func (s *Service) AddCategory(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	if err := s.api.PostJSON(ctx, "/admin/add-catagory", body, nil); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

// ProductUpload is a new product with its image files.
type ProductUpload struct {
	Name         string
	Title        string
	Description  string
	Price        decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
	CategoryID   int
	Images       []client.FormFile
}

// UploadProduct creates a product via multipart upload and drops all
// cached listings so the new product appears on the next refresh.
func (s *Service) UploadProduct(ctx context.Context, upload ProductUpload) error {
	fields := map[string]string{
		"name":          upload.Name,
		"title":         upload.Title,
		"description":   upload.Description,
		"price":         upload.Price.String(),
		"selling_price": upload.SellingPrice.String(),
		"quantity":      strconv.Itoa(upload.Quantity),
		"category_id":   strconv.Itoa(upload.CategoryID),
	}
	if err := s.api.PostMultipart(ctx, "/admin/upload-product", fields, upload.Images, nil); err != nil {
		return fmt.Errorf("upload product: %w", err)
	}

	s.invalidateListings(ctx)
	s.logger.Info().Str("name", upload.Name).Msg("Product uploaded")
	return nil
}

// Products returns the full product list as the admin console sees it.
func (s *Service) Products(ctx context.Context) ([]catalog.Product, error) {
	var envelope struct {
		Products []catalog.Product `json:"products"`
		Data     []catalog.Product `json:"data"`
	}
	if err := s.api.GetJSON(ctx, "/admin/get-products", nil, &envelope); err != nil {
		return nil, fmt.Errorf("admin products: %w", err)
	}
	if envelope.Products != nil {
		return envelope.Products, nil
	}
	return envelope.Data, nil
}

// UpdateProduct patches the given fields of a product and invalidates its
// cached detail along with all listings.
func (s *Service) UpdateProduct(ctx context.Context, productID int, fields map[string]any) error {
	path := "/admin/update-product/" + strconv.Itoa(productID)
	if err := s.api.PatchJSON(ctx, path, fields, nil); err != nil {
		return fmt.Errorf("update product %d: %w", productID, err)
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, productID)
	}
	s.invalidateListings(ctx)
	return nil
}

// DeleteProduct removes a product and invalidates the cache.
func (s *Service) DeleteProduct(ctx context.Context, productID int) error {
	body := map[string]int{"product_id": productID}
	if err := s.api.PostJSON(ctx, "/admin/delete-product", body, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, productID)
	}
	s.invalidateListings(ctx)
	s.logger.Info().Int("product_id", productID).Msg("Product deleted")
	return nil
}

// AdminOrder is one order row in the back-office order table.
type AdminOrder struct {
	ID     int             `json:"id"`
	UserID int             `json:"user_id"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// Orders returns all orders for the back-office table.
func (s *Service) Orders(ctx context.Context) ([]AdminOrder, error) {
	var envelope struct {
		Orders []AdminOrder `json:"orders"`
		Data   []AdminOrder `json:"data"`
	}
	if err := s.api.GetJSON(ctx, "/admin/get-orders", nil, &envelope); err != nil {
		return nil, fmt.Errorf("admin orders: %w", err)
	}
	if envelope.Orders != nil {
		return envelope.Orders, nil
	}
	return envelope.Data, nil
}

// UpdateOrderStatus moves an order to the given status.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int, status string) error {
	body := map[string]any{"order_id": orderID, "status": status}
	if err := s.api.PostJSON(ctx, "/admin/update-order-status", body, nil); err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	return nil
}

// invalidateListings drops every cached listing. Detail entries for other
// products stay valid.
func (s *Service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateListings(ctx)
}
