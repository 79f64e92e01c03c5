package cart

import (
	"context"
	"sync"
	"time"

	"bakery-shop/internal/domain"
	"github.com/google/uuid"
)

type memCart struct {
	cart  domain.Cart
	lines []string
}

type memState struct {
	carts  map[string]*memCart
	owners map[domain.Owner]string
	lines  map[string]*domain.CartLine
}

func newMemState() *memState {
	return &memState{
		carts:  make(map[string]*memCart),
		owners: make(map[domain.Owner]string),
		lines:  make(map[string]*domain.CartLine),
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	for id, c := range s.carts {
		cp := &memCart{cart: c.cart, lines: append([]string(nil), c.lines...)}
		out.carts[id] = cp
	}
	for owner, id := range s.owners {
		out.owners[owner] = id
	}
	for id, l := range s.lines {
		cp := *l
		out.lines[id] = &cp
	}
	return out
}

type memoryStore struct {
	mu    *sync.RWMutex
	state **memState
	now   func() time.Time
	inTx  bool
}

// NewMemory returns a Store kept in process memory. A transaction holds the
// store's write lock and works on a copy that replaces the live state only on
// commit.
func NewMemory() Store {
	state := newMemState()
	return &memoryStore{
		mu:    &sync.RWMutex{},
		state: &state,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryStore) read(fn func(st *memState) error) error {
	if r.inTx {
		return fn(*r.state)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(*r.state)
}

func (r *memoryStore) write(fn func(st *memState) error) error {
	if r.inTx {
		return fn(*r.state)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(*r.state)
}

func (r *memoryStore) FindOrCreate(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var out *domain.Cart
	err := r.write(func(st *memState) error {
		id, ok := st.owners[owner]
		if !ok {
			now := r.now()
			id = uuid.NewString()
			st.carts[id] = &memCart{cart: domain.Cart{ID: id, Owner: owner, CreatedAt: now, UpdatedAt: now}}
			st.owners[owner] = id
		}
		out = st.snapshot(id)
		return nil
	})
	return out, err
}

func (r *memoryStore) FindByOwner(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var out *domain.Cart
	err := r.read(func(st *memState) error {
		id, ok := st.owners[owner]
		if !ok {
			return domain.ErrNotFound
		}
		out = st.snapshot(id)
		return nil
	})
	return out, err
}

func (r *memoryStore) FindByID(_ context.Context, cartID string) (*domain.Cart, error) {
	var out *domain.Cart
	err := r.read(func(st *memState) error {
		if _, ok := st.carts[cartID]; !ok {
			return domain.ErrNotFound
		}
		out = st.snapshot(cartID)
		return nil
	})
	return out, err
}

func (r *memoryStore) GetLine(_ context.Context, lineID string) (*domain.CartLine, error) {
	var out domain.CartLine
	err := r.read(func(st *memState) error {
		l, ok := st.lines[lineID]
		if !ok {
			return domain.ErrLineNotFound
		}
		out = *l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memoryStore) UpsertLine(_ context.Context, cartID string, line domain.CartLine) (*domain.CartLine, error) {
	if !domain.ValidQuantity(line.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	var out domain.CartLine
	err := r.write(func(st *memState) error {
		c, ok := st.carts[cartID]
		if !ok {
			return domain.ErrNotFound
		}
		now := r.now()
		key := line.Key()
		for _, id := range c.lines {
			existing := st.lines[id]
			if existing.Key() == key {
				if !domain.ValidQuantity(existing.Quantity + line.Quantity) {
					return domain.ErrInvalidQuantity
				}
				existing.Quantity += line.Quantity
				existing.UpdatedAt = now
				c.cart.UpdatedAt = now
				out = *existing
				return nil
			}
		}
		line.ID = uuid.NewString()
		line.CartID = cartID
		line.CreatedAt = now
		line.UpdatedAt = now
		st.lines[line.ID] = &line
		c.lines = append(c.lines, line.ID)
		c.cart.UpdatedAt = now
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memoryStore) SetLineQuantity(_ context.Context, lineID string, quantity int) error {
	if !domain.ValidQuantity(quantity) {
		return domain.ErrInvalidQuantity
	}
	return r.write(func(st *memState) error {
		l, ok := st.lines[lineID]
		if !ok {
			return domain.ErrLineNotFound
		}
		now := r.now()
		l.Quantity = quantity
		l.UpdatedAt = now
		st.carts[l.CartID].cart.UpdatedAt = now
		return nil
	})
}

func (r *memoryStore) DeleteLine(_ context.Context, lineID string) error {
	return r.write(func(st *memState) error {
		l, ok := st.lines[lineID]
		if !ok {
			return domain.ErrLineNotFound
		}
		st.detach(l.CartID, lineID)
		delete(st.lines, lineID)
		st.carts[l.CartID].cart.UpdatedAt = r.now()
		return nil
	})
}

func (r *memoryStore) DeleteAllLines(_ context.Context, cartID string) error {
	return r.write(func(st *memState) error {
		c, ok := st.carts[cartID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, id := range c.lines {
			delete(st.lines, id)
		}
		c.lines = nil
		c.cart.UpdatedAt = r.now()
		return nil
	})
}

func (r *memoryStore) DeleteCart(_ context.Context, cartID string) error {
	return r.write(func(st *memState) error {
		c, ok := st.carts[cartID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, id := range c.lines {
			delete(st.lines, id)
		}
		delete(st.owners, c.cart.Owner)
		delete(st.carts, cartID)
		return nil
	})
}

func (r *memoryStore) ReassignLine(_ context.Context, lineID, newCartID string) error {
	return r.write(func(st *memState) error {
		l, ok := st.lines[lineID]
		if !ok {
			return domain.ErrLineNotFound
		}
		target, ok := st.carts[newCartID]
		if !ok {
			return domain.ErrNotFound
		}
		key := l.Key()
		for _, id := range target.lines {
			if st.lines[id].Key() == key {
				return domain.ErrStaleWrite
			}
		}
		now := r.now()
		st.detach(l.CartID, lineID)
		st.carts[l.CartID].cart.UpdatedAt = now
		l.CartID = newCartID
		l.UpdatedAt = now
		target.lines = append(target.lines, lineID)
		target.cart.UpdatedAt = now
		return nil
	})
}

func (r *memoryStore) LockOwner(_ context.Context, owner domain.Owner) error {
	return owner.Validate()
}

func (r *memoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	work := (*r.state).clone()
	tx := &memoryStore{mu: r.mu, state: &work, now: r.now, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	*r.state = work
	return nil
}

func (s *memState) snapshot(cartID string) *domain.Cart {
	c := s.carts[cartID]
	out := c.cart
	out.Lines = make([]domain.CartLine, 0, len(c.lines))
	for _, id := range c.lines {
		out.Lines = append(out.Lines, *s.lines[id])
	}
	return &out
}

func (s *memState) detach(cartID, lineID string) {
	c, ok := s.carts[cartID]
	if !ok {
		return
	}
	for i, id := range c.lines {
		if id == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}
