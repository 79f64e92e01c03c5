package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricedVariant is a purchasable size of a product with its own price and an
// optional promotion window.
type PricedVariant struct {
	ID             string              `json:"priceId"`
	ProductID      string              `json:"productId"`
	SizeLabel      string              `json:"size"`
	SKU            string              `json:"sku"`
	RegularPrice   decimal.Decimal     `json:"regularPrice"`
	PromotionPrice decimal.NullDecimal `json:"promotionPrice"`
	PromotionStart *time.Time          `json:"promotionStart,omitempty"`
	PromotionEnd   *time.Time          `json:"promotionEnd,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// PromotionActive reports whether now lies strictly inside the promotion
// window. Both boundary instants count as inactive.
func (v PricedVariant) PromotionActive(now time.Time) bool {
	if !v.PromotionPrice.Valid || v.PromotionStart == nil || v.PromotionEnd == nil {
		return false
	}
	return now.After(*v.PromotionStart) && now.Before(*v.PromotionEnd)
}

func (v PricedVariant) EffectivePrice(now time.Time) decimal.Decimal {
	if v.PromotionActive(now) {
		return v.PromotionPrice.Decimal
	}
	return v.RegularPrice
}

// DiscountPercentage is 100*(regular-promotion)/regular rounded half up, or 0
// outside the promotion window.
func (v PricedVariant) DiscountPercentage(now time.Time) int {
	if !v.PromotionActive(now) || v.RegularPrice.IsZero() {
		return 0
	}
	discount := v.RegularPrice.Sub(v.PromotionPrice.Decimal)
	return int(discount.Mul(decimal.NewFromInt(100)).Div(v.RegularPrice).Round(0).IntPart())
}
