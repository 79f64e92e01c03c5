package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

func TestCartLine_KeyDistinguishesMissingFromEmpty(t *testing.T) {
	withSize := CartLine{ProductID: "p1", SizeLabel: strPtr(""), VariantID: strPtr("v1")}
	withoutSize := CartLine{ProductID: "p1", VariantID: strPtr("v1")}
	assert.NotEqual(t, withSize.Key(), withoutSize.Key())

	same := CartLine{ID: "other", ProductID: "p1", SizeLabel: strPtr(""), VariantID: strPtr("v1"), Quantity: 9}
	assert.Equal(t, withSize.Key(), same.Key())
}

func TestCartLine_Subtotal(t *testing.T) {
	line := CartLine{Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")}
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("0.30")))
}

func TestCart_FindLine(t *testing.T) {
	cart := &Cart{Lines: []CartLine{
		{ID: "l1", ProductID: "p1", SizeLabel: strPtr("S"), VariantID: strPtr("v1")},
		{ID: "l2", ProductID: "p1", SizeLabel: strPtr("M"), VariantID: strPtr("v2")},
	}}

	line, ok := cart.FindLine(CartLine{ProductID: "p1", SizeLabel: strPtr("M"), VariantID: strPtr("v2")}.Key())
	require.True(t, ok)
	assert.Equal(t, "l2", line.ID)

	_, ok = cart.FindLine(CartLine{ProductID: "p2", SizeLabel: strPtr("M"), VariantID: strPtr("v2")}.Key())
	assert.False(t, ok)
}

func TestOwner(t *testing.T) {
	user := UserOwner("42")
	id, ok := user.UserID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	_, ok = user.SessionToken()
	assert.False(t, ok)
	assert.Equal(t, "user:42", user.Key())

	session := SessionOwner("tok")
	assert.Equal(t, "session:tok", session.Key())
	assert.NotEqual(t, user, session)

	assert.ErrorIs(t, Owner{}.Validate(), ErrInvalidIdentity)
	assert.ErrorIs(t, UserOwner("").Validate(), ErrInvalidIdentity)
	assert.NoError(t, session.Validate())

	cart := &Cart{Owner: session}
	assert.True(t, cart.OwnedBy(SessionOwner("tok")))
	assert.False(t, cart.OwnedBy(UserOwner("tok")))
}

func TestValidQuantity(t *testing.T) {
	for q, want := range map[int]bool{-1: false, 0: false, 1: true, MaxLineQuantity: true, MaxLineQuantity + 1: false} {
		assert.Equal(t, want, ValidQuantity(q), "quantity %d", q)
	}
}
