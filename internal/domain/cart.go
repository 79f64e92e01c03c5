package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps a single line. Sums produced by consolidation and
// merge are held to the same cap.
const MaxLineQuantity = 999

// ValidQuantity reports whether q may be stored on a line.
func ValidQuantity(q int) bool {
	return q >= 1 && q <= MaxLineQuantity
}

type Cart struct {
	ID        string     `json:"id"`
	Owner     Owner      `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Lines     []CartLine `json:"lines,omitempty"`
}

type CartLine struct {
	ID        string          `json:"id"`
	CartID    string          `json:"cartId"`
	ProductID string          `json:"productId"`
	SizeLabel *string         `json:"sizeSelected,omitempty"`
	VariantID *string         `json:"priceId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// LineKey is the consolidation key: a cart holds at most one line per key.
// A missing size or variant is distinct from an empty one.
type LineKey struct {
	ProductID  string
	SizeLabel  string
	HasSize    bool
	VariantID  string
	HasVariant bool
}

func (l CartLine) Key() LineKey {
	k := LineKey{ProductID: l.ProductID}
	if l.SizeLabel != nil {
		k.SizeLabel, k.HasSize = *l.SizeLabel, true
	}
	if l.VariantID != nil {
		k.VariantID, k.HasVariant = *l.VariantID, true
	}
	return k
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// FindLine returns the line matching key, if any.
func (c *Cart) FindLine(key LineKey) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

func (c *Cart) OwnedBy(owner Owner) bool {
	return c.Owner == owner && owner.Validate() == nil
}
