// Package cart holds the shopping cart and wishlist. State lives in
// memory and is written to durable local storage on every mutation, so the
// cart of an anonymous visitor survives a restart. When the user logs in,
// MergeRemote folds the server-side cart into the local one and Sync
// pushes the merged result back.
package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/faizansiddqui/storefront-client/pkg/catalog"
	"github.com/faizansiddqui/storefront-client/pkg/logging"
	"github.com/faizansiddqui/storefront-client/pkg/storefront"
)

// Line is one cart position.
type Line struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is Quantity * UnitPrice.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the persisted cart state.
type State struct {
	Lines    []Line `json:"lines"`
	Wishlist []int  `json:"wishlist"`
}

// Syncer pushes cart lines to the backend. *storefront.Service satisfies
// it.
type Syncer interface {
	PushCart(ctx context.Context, lines []storefront.CartLine) error
}

// Cart is the local cart and wishlist. All methods are safe for
// concurrent use.
type Cart struct {
	store  Store
	logger zerolog.Logger

	mu       sync.RWMutex
	lines    map[int]Line
	wishlist map[int]struct{}
}

// New creates a cart and restores any persisted state. An unreadable or
// corrupt cart store starts empty.
func New(store Store) *Cart {
	c := &Cart{
		store:    store,
		logger:   logging.NewLogger("cart"),
		lines:    make(map[int]Line),
		wishlist: make(map[int]struct{}),
	}

	state, err := store.Load()
	if err != nil {
		if err != ErrNoCart {
			c.logger.Warn().Err(err).Msg("Cart restore failed, starting empty")
		}
		return c
	}
	for _, line := range state.Lines {
		if line.Quantity > 0 {
			c.lines[line.ProductID] = line
		}
	}
	for _, id := range state.Wishlist {
		c.wishlist[id] = struct{}{}
	}
	return c
}

// Add puts qty units of product into the cart, adding to an existing line.
// qty must be positive.
func (c *Cart) Add(product catalog.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("add to cart: quantity %d must be positive", qty)
	}

	c.mu.Lock()
	line, ok := c.lines[product.ID]
	if !ok {
		line = Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.SellingPrice,
		}
	}
	line.Quantity += qty
	c.lines[product.ID] = line
	c.persistLocked()
	c.mu.Unlock()
	return nil
}

// SetQuantity sets the line quantity for productID. Zero removes the line.
func (c *Cart) SetQuantity(productID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("set quantity: %d must not be negative", qty)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[productID]
	if !ok {
		return fmt.Errorf("set quantity: product %d not in cart", productID)
	}
	if qty == 0 {
		delete(c.lines, productID)
	} else {
		line.Quantity = qty
		c.lines[productID] = line
	}
	c.persistLocked()
	return nil
}

// Remove drops the line for productID. Removing an absent line is not an
// error.
func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	delete(c.lines, productID)
	c.persistLocked()
	c.mu.Unlock()
}

// Lines returns the cart lines ordered by product id.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLinesLocked()
}

// Total returns the decimal sum of all line subtotals.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Clear empties the cart, keeping the wishlist.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = make(map[int]Line)
	c.persistLocked()
	c.mu.Unlock()
}

// ToggleWishlist adds productID to the wishlist, or removes it when
// already present. It reports whether the product is wishlisted after the
// call.
func (c *Cart) ToggleWishlist(productID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.wishlist[productID]
	if ok {
		delete(c.wishlist, productID)
	} else {
		c.wishlist[productID] = struct{}{}
	}
	c.persistLocked()
	return !ok
}

// Wishlisted reports whether productID is on the wishlist.
func (c *Cart) Wishlisted(productID int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.wishlist[productID]
	return ok
}

// Wishlist returns the wishlisted product ids in ascending order.
func (c *Cart) Wishlist() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int, 0, len(c.wishlist))
	for id := range c.wishlist {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MergeRemote folds the server-side cart into the local one after login.
// For products present in both, the local quantity wins; remote-only lines
// are added as-is.
func (c *Cart) MergeRemote(remote []storefront.CartLine) {
	c.mu.Lock()
	for _, r := range remote {
		if r.Quantity <= 0 {
			continue
		}
		if _, ok := c.lines[r.ProductID]; ok {
			continue
		}
		c.lines[r.ProductID] = Line{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
		}
	}
	c.persistLocked()
	c.mu.Unlock()
}

// Sync replaces the server-side cart with the local lines.
func (c *Cart) Sync(ctx context.Context, backend Syncer) error {
	c.mu.RLock()
	lines := c.sortedLinesLocked()
	c.mu.RUnlock()

	remote := make([]storefront.CartLine, len(lines))
	for i, line := range lines {
		remote[i] = storefront.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	if err := backend.PushCart(ctx, remote); err != nil {
		return fmt.Errorf("sync cart: %w", err)
	}

	c.logger.Debug().Int("lines", len(remote)).Msg("Cart synced")
	return nil
}

func (c *Cart) sortedLinesLocked() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// persistLocked writes the full state to the store. Store failures are
// logged and absorbed, the cart keeps working in memory.
func (c *Cart) persistLocked() {
	state := State{
		Lines:    c.sortedLinesLocked(),
		Wishlist: make([]int, 0, len(c.wishlist)),
	}
	for id := range c.wishlist {
		state.Wishlist = append(state.Wishlist, id)
	}
	sort.Ints(state.Wishlist)

	if err := c.store.Save(state); err != nil {
		c.logger.Warn().Err(err).Msg("Cart save failed")
	}
}
