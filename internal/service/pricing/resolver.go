package pricing

import (
	"context"
	"errors"
	"time"

	"bakery-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type variantRepo interface {
	GetVariant(ctx context.Context, id string) (*domain.PricedVariant, error)
}

// Resolver prices variants at a given instant.
type Resolver struct {
	variants variantRepo
}

func New(variants variantRepo) *Resolver {
	return &Resolver{variants: variants}
}

// Quote is the price of a variant as observed at one instant.
type Quote struct {
	Variant         *domain.PricedVariant
	Price           decimal.Decimal
	DiscountPercent int
	PromotionActive bool
}

func (r *Resolver) Quote(ctx context.Context, variantID string, now time.Time) (*Quote, error) {
	if variantID == "" {
		return nil, domain.ErrPriceUnavailable
	}
	v, err := r.variants.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, err
	}
	return QuoteVariant(v, now), nil
}

// QuoteVariant prices an already loaded variant.
func QuoteVariant(v *domain.PricedVariant, now time.Time) *Quote {
	return &Quote{
		Variant:         v,
		Price:           v.EffectivePrice(now),
		DiscountPercent: v.DiscountPercentage(now),
		PromotionActive: v.PromotionActive(now),
	}
}

// Range returns the lowest and highest effective price across variants.
// ok is false when variants is empty.
func Range(variants []domain.PricedVariant, now time.Time) (low, high decimal.Decimal, ok bool) {
	for i, v := range variants {
		p := v.EffectivePrice(now)
		if i == 0 {
			low, high = p, p
			continue
		}
		if p.LessThan(low) {
			low = p
		}
		if p.GreaterThan(high) {
			high = p
		}
	}
	return low, high, len(variants) > 0
}
