// Package identity maps an incoming caller onto the single cart owner it
// acts for.
package identity

import (
	"strings"

	"bakery-shop/internal/domain"
)

// Caller is what the transport layer knows about who is calling. At most one
// field may be set.
type Caller struct {
	UserID       string
	SessionToken string
}

// Resolve returns the owner for c. Exactly one of the two fields must be set.
func Resolve(c Caller) (domain.Owner, error) {
	owner, ok, err := ResolveOptional(c)
	if err != nil {
		return domain.Owner{}, err
	}
	if !ok {
		return domain.Owner{}, domain.ErrInvalidIdentity
	}
	return owner, nil
}

// ResolveOptional is Resolve for read paths: a caller with no identity at all
// yields ok=false instead of an error.
func ResolveOptional(c Caller) (owner domain.Owner, ok bool, err error) {
	userID := strings.TrimSpace(c.UserID)
	token := strings.TrimSpace(c.SessionToken)
	switch {
	case userID != "" && token != "":
		return domain.Owner{}, false, domain.ErrInvalidIdentity
	case userID != "":
		return domain.UserOwner(userID), true, nil
	case token != "":
		return domain.SessionOwner(token), true, nil
	default:
		return domain.Owner{}, false, nil
	}
}
