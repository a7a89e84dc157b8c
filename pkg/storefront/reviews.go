package storefront

import (
	"context"
	"strconv"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/client"
)

// Reviews returns the reviews for a product. Reviews are not cached:
// they change on every submission and listing pages do not render them.
func (s *Service) Reviews(ctx context.Context, productID int) ([]catalog.Review, error) {
	var envelope reviewsEnvelope
	path := "/user/get-product-reviews/" + strconv.Itoa(productID)
	if err := s.api.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.reviews(), nil
}

// ReviewInput is a new review submission. Images are optional.
type ReviewInput struct {
	ProductID int
	Rating    int
	Comment   string
	Images    []client.FormFile
}

// SubmitReview posts a review as multipart form data and invalidates the
// product's detail cache entry so the rating refreshes on next view.
func (s *Service) SubmitReview(ctx context.Context, input ReviewInput) error {
	fields := map[string]string{
		"product_id": strconv.Itoa(input.ProductID),
		"rating":     strconv.Itoa(input.Rating),
		"comment":    input.Comment,
	}

	if err := s.api.PostMultipart(ctx, "/user/product-reviews", fields, input.Images, nil); err != nil {
		return err
	}

	s.cache.InvalidateProduct(ctx, input.ProductID)
	return nil
}
