package cart

// CheckoutLine is the shape the order API expects for one cart line.
type CheckoutLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Image     string  `json:"image"`
	SKU       string  `json:"sku"`
}

// ForCheckout projects the cart for the order API. Lines that lost their
// product id are skipped rather than failing the checkout.
func (s *Store) ForCheckout() []CheckoutLine {
	return Project(s.Lines())
}

// Project maps lines to checkout lines, dropping any without a product id.
func Project(lines []Line) []CheckoutLine {
	out := make([]CheckoutLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		sku := l.SKU
		if sku == "" {
			sku = FallbackSKU(l.ProductID)
		}
		out = append(out, CheckoutLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Image:     l.Image,
			SKU:       sku,
		})
	}
	return out
}
