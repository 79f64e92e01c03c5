package cart

import (
	"testing"

	"bakery-shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectKeepsLinesWithoutProduct(t *testing.T) {
	size := "M"
	c := &domain.Cart{
		ID:    "c-1",
		Owner: domain.UserOwner("u-1"),
		Lines: []domain.CartLine{
			{ID: "l-1", ProductID: "p-1", SizeLabel: &size, Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
			{ID: "l-2", ProductID: "p-gone", Quantity: 7, UnitPrice: decimal.RequireFromString("0.20")},
		},
	}
	products := map[string]*domain.Product{
		"p-1":    {ID: "p-1", Name: "Macaron", StockQuantity: 9},
		"p-gone": nil,
	}

	sum := Project(c, domain.Owner{}, products, "VND")

	require.Len(t, sum.Items, 2)
	assert.Equal(t, "c-1", sum.CartID)
	assert.Equal(t, "u-1", sum.UserID)
	assert.Empty(t, sum.SessionID)
	assert.Equal(t, "Macaron", sum.Items[0].ProductName)
	assert.Equal(t, "M", *sum.Items[0].SizeSelected)
	assert.Empty(t, sum.Items[1].ProductName)
	assert.Equal(t, "1.4", sum.Items[1].SubTotal.String())
	assert.Equal(t, "1.7", sum.TotalAmount.String())
	assert.Equal(t, 10, sum.TotalItems)
}

func TestProjectNilCart(t *testing.T) {
	sum := Project(nil, domain.SessionOwner("tok"), nil, "VND")

	assert.Empty(t, sum.CartID)
	assert.Equal(t, "tok", sum.SessionID)
	assert.NotNil(t, sum.Items)
	assert.True(t, sum.TotalAmount.IsZero())
}
