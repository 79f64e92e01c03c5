package cart

import (
	"bakery-shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Project builds the read view of c. A nil cart projects to an empty summary
// for owner. Lines whose product is missing from products, or mapped to nil,
// keep only the product id so the totals still cover them.
func Project(c *domain.Cart, owner domain.Owner, products map[string]*domain.Product, currency string) *domain.CartSummary {
	out := &domain.CartSummary{
		Items:       []domain.LineSummary{},
		TotalAmount: decimal.Zero,
		Currency:    currency,
	}
	if c != nil {
		owner = c.Owner
		out.CartID = c.ID
	}
	if id, ok := owner.UserID(); ok {
		out.UserID = id
	}
	if token, ok := owner.SessionToken(); ok {
		out.SessionID = token
	}
	if c == nil {
		return out
	}

	for _, l := range c.Lines {
		item := domain.LineSummary{
			CartItemID:   l.ID,
			ProductID:    l.ProductID,
			SizeSelected: l.SizeLabel,
			PriceID:      l.VariantID,
			Quantity:     l.Quantity,
			Price:        l.UnitPrice,
			SubTotal:     l.Subtotal(),
		}
		if p := products[l.ProductID]; p != nil {
			item.ProductName = p.Name
			item.MainImageURL = p.MainImageURL
			item.Description = p.Description
			item.StockQuantity = p.StockQuantity
		}
		out.Items = append(out.Items, item)
		out.TotalAmount = out.TotalAmount.Add(item.SubTotal)
		out.TotalItems += l.Quantity
	}
	return out
}
