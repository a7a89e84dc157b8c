package catalog

import "time"

// Review is a customer product review as returned by the reviews endpoint.
type Review struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Images    ImageSet  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AverageRating computes the mean rating of a review set, 0 when empty.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
