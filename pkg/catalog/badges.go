package catalog

import "time"

// NewBadgeAge is the maximum product age for the "new" badge.
const NewBadgeAge = 3 * 24 * time.Hour

// Badge is an ephemeral display marker derived at render time.
// Badges are never persisted; they are recomputed against the current
// clock on every read.
type Badge string

const (
	// BadgeNew marks products created within the last three days.
	BadgeNew Badge = "new"

	// BadgeBestSeller marks products served from the best-sellers listing.
	BadgeBestSeller Badge = "best_seller"

	// BadgeOutOfStock marks products with zero stock.
	BadgeOutOfStock Badge = "out_of_stock"
)

// IsNew reports whether the product was created within NewBadgeAge of now.
func IsNew(p Product, now time.Time) bool {
	if p.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(p.CreatedAt) < NewBadgeAge
}

// Badges derives the display badges for a product at the given instant.
func Badges(p Product, now time.Time) []Badge {
	var badges []Badge
	if IsNew(p, now) {
		badges = append(badges, BadgeNew)
	}
	if p.OutOfStock() {
		badges = append(badges, BadgeOutOfStock)
	}
	return badges
}
