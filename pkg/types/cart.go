package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineID identifies a cart line. Backend-assigned ids are positive; ids
// allocated on the device before the first successful sync are negative.
type LineID int64

// IsLocal reports whether the id was allocated on the device.
func (id LineID) IsLocal() bool {
	return id < 0
}

// CartLine is a (product, size) pair with its quantity.
type CartLine struct {
	ID       LineID  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
}

// Key returns the merge identity of the line.
func (l CartLine) Key() LineKey {
	return NewLineKey(l.Product.ID, l.Size)
}

// Subtotal is price x quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey is the merge identity of a cart line: at most one line exists per key.
type LineKey struct {
	ProductID int64
	Size      string
}

// NewLineKey canonicalizes the size so an absent size and "" collapse to one key.
func NewLineKey(productID int64, size string) LineKey {
	return LineKey{ProductID: productID, Size: CanonicalSize(size)}
}

// CanonicalSize trims whitespace; the empty string is the single "no size" value.
func CanonicalSize(size string) string {
	return strings.TrimSpace(size)
}

// Cart is the authoritative cart returned by every backend cart endpoint.
type Cart struct {
	ID         int64           `json:"id,omitempty"`
	Items      []CartLine      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// CartTotals computes the derived totals for a list of lines.
func CartTotals(lines []CartLine) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, line := range lines {
		total = total.Add(line.Subtotal())
		count += line.Quantity
	}
	return total, count
}
