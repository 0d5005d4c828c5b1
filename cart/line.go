// Package cart holds per-session shopping carts: lines merged by product,
// size and color, write-through persistence and change notifications.
package cart

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Key identifies a cart line. Size and Color are empty when not chosen.
type Key struct {
	ProductID string
	Size      string
	Color     string
}

func NewKey(productID, size, color string) Key {
	return Key{
		ProductID: strings.TrimSpace(productID),
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
	}
}

// Line is one distinct product variant in the cart. UnitPrice is frozen at
// the moment the product was first added.
type Line struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug,omitempty"`
	Image     string    `json:"image,omitempty"`
	SKU       string    `json:"sku,omitempty"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

func (l Line) Key() Key {
	return NewKey(l.ProductID, l.Size, l.Color)
}

func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the cart contents with its aggregates.
type Snapshot struct {
	SessionID  string  `json:"session_id"`
	Lines      []Line  `json:"lines"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

func totals(lines []Line) (int, float64) {
	items := 0
	price := decimal.Zero
	for _, l := range lines {
		items += l.Quantity
		price = price.Add(l.Subtotal())
	}
	f, _ := price.Float64()
	return items, f
}

// FallbackSKU derives a stable SKU from a product id for products that have
// none: "SKU-" followed by the first eight alphanumerics, upper-cased.
func FallbackSKU(productID string) string {
	var b strings.Builder
	for _, r := range productID {
		if b.Len() == 8 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return "SKU-" + b.String()
}
