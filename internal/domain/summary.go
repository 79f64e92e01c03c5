package domain

import "github.com/shopspring/decimal"

// CartSummary is the read-facing view of a cart. It is computed on every read.
type CartSummary struct {
	CartID      string          `json:"cartId,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	Items       []LineSummary   `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
	Currency    string          `json:"currency,omitempty"`
}

type LineSummary struct {
	CartItemID    string          `json:"cartItemId"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	MainImageURL  string          `json:"mainImageUrl,omitempty"`
	Description   string          `json:"description,omitempty"`
	StockQuantity int             `json:"stockQuantity"`
	SizeSelected  *string         `json:"sizeSelected,omitempty"`
	PriceID       *string         `json:"priceId,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SubTotal      decimal.Decimal `json:"subTotal"`
}
