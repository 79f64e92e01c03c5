package domain

// OwnerKind tells which identity dimension owns a cart.
type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerUser
	OwnerSession
)

// Owner identifies the single cart holder: an authenticated user or an
// anonymous session, never both.
type Owner struct {
	kind OwnerKind
	id   string
}

func UserOwner(userID string) Owner {
	return Owner{kind: OwnerUser, id: userID}
}

func SessionOwner(token string) Owner {
	return Owner{kind: OwnerSession, id: token}
}

func (o Owner) Kind() OwnerKind {
	return o.kind
}

// UserID returns the user id when the owner is an authenticated user.
func (o Owner) UserID() (string, bool) {
	if o.kind != OwnerUser {
		return "", false
	}
	return o.id, true
}

// SessionToken returns the token when the owner is an anonymous session.
func (o Owner) SessionToken() (string, bool) {
	if o.kind != OwnerSession {
		return "", false
	}
	return o.id, true
}

// Key is the stable string form used for locking and logging.
func (o Owner) Key() string {
	switch o.kind {
	case OwnerUser:
		return "user:" + o.id
	case OwnerSession:
		return "session:" + o.id
	default:
		return ""
	}
}

func (o Owner) Validate() error {
	if o.kind == OwnerNone || o.id == "" {
		return ErrInvalidIdentity
	}
	return nil
}

func (o Owner) String() string {
	return o.Key()
}
