package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/lock"
	cartrepo "bakery-shop/internal/repository/cart"
	"bakery-shop/internal/service/pricing"
)

// Catalog is the read-only product and variant lookup the engine prices
// against. Both methods return domain.ErrNotFound for unknown ids.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.PricedVariant, error)
}

// Service is the cart consolidation engine. Every mutation runs under the
// owner's keyed lock and inside one store transaction.
type Service struct {
	store    cartrepo.Store
	catalog  Catalog
	pricing  *pricing.Resolver
	locks    *lock.Keyed
	logger   *log.Logger
	currency string
	now      func() time.Time
}

func New(store cartrepo.Store, catalog Catalog, logger *log.Logger, currency string) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		store:    store,
		catalog:  catalog,
		pricing:  pricing.New(catalog),
		locks:    lock.NewKeyed(),
		logger:   logger,
		currency: currency,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type AddItemInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	SizeLabel *string `json:"sizeSelected,omitempty"`
	VariantID *string `json:"priceId,omitempty"`
}

func (s *Service) AddItem(ctx context.Context, owner domain.Owner, in AddItemInput) (*domain.CartSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, strings.TrimSpace(in.ProductID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.IsActive {
		return nil, domain.ErrProductNotFound
	}

	if in.VariantID == nil || strings.TrimSpace(*in.VariantID) == "" {
		return nil, domain.ErrPriceUnavailable
	}
	quote, err := s.pricing.Quote(ctx, *in.VariantID, s.now())
	if err != nil {
		return nil, err
	}
	if quote.Variant.ProductID != product.ID {
		return nil, domain.ErrVariantNotFound
	}

	unlock := s.locks.Lock(owner.Key())
	defer unlock()

	line := domain.CartLine{
		ProductID: product.ID,
		SizeLabel: in.SizeLabel,
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		UnitPrice: quote.Price,
	}
	err = s.store.WithinTx(ctx, func(tx cartrepo.Store) error {
		if err := tx.LockOwner(ctx, owner); err != nil {
			return err
		}
		c, err := tx.FindOrCreate(ctx, owner)
		if err != nil {
			return fmt.Errorf("find or create cart: %w", err)
		}
		saved, err := tx.UpsertLine(ctx, c.ID, line)
		if err != nil {
			return fmt.Errorf("upsert line: %w", err)
		}
		line = *saved
		return nil
	})
	if err != nil {
		s.logger.Printf("cart engine: add failed owner=%s product=%s error=%v", owner, product.ID, err)
		return nil, err
	}
	s.logger.Printf("cart engine: add owner=%s product=%s variant=%s qty=%d line=%s line_qty=%d", owner, product.ID, *in.VariantID, in.Quantity, line.ID, line.Quantity)

	return s.GetSummary(ctx, owner)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner domain.Owner, lineID string, quantity int) (*domain.CartSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if quantity > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}

	unlock := s.locks.Lock(owner.Key())
	defer unlock()

	err := s.store.WithinTx(ctx, func(tx cartrepo.Store) error {
		if err := s.checkOwnership(ctx, tx, owner, lineID); err != nil {
			return err
		}
		if quantity <= 0 {
			return tx.DeleteLine(ctx, lineID)
		}
		return tx.SetLineQuantity(ctx, lineID, quantity)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("cart engine: update owner=%s line=%s qty=%d", owner, lineID, quantity)

	return s.GetSummary(ctx, owner)
}

func (s *Service) RemoveItem(ctx context.Context, owner domain.Owner, lineID string) (*domain.CartSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(owner.Key())
	defer unlock()

	err := s.store.WithinTx(ctx, func(tx cartrepo.Store) error {
		if err := s.checkOwnership(ctx, tx, owner, lineID); err != nil {
			return err
		}
		return tx.DeleteLine(ctx, lineID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("cart engine: remove owner=%s line=%s", owner, lineID)

	return s.GetSummary(ctx, owner)
}

// ClearCart deletes the owner's cart with all its lines. An owner without a
// cart is left as is.
func (s *Service) ClearCart(ctx context.Context, owner domain.Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(owner.Key())
	defer unlock()

	return s.store.WithinTx(ctx, func(tx cartrepo.Store) error {
		if err := tx.LockOwner(ctx, owner); err != nil {
			return err
		}
		c, err := tx.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := tx.DeleteAllLines(ctx, c.ID); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		if err := tx.DeleteCart(ctx, c.ID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		s.logger.Printf("cart engine: clear owner=%s cart=%s lines=%d", owner, c.ID, len(c.Lines))
		return nil
	})
}

// GetSummary projects the owner's cart. An owner with no cart, or no
// identity at all, gets an empty summary.
func (s *Service) GetSummary(ctx context.Context, owner domain.Owner) (*domain.CartSummary, error) {
	if owner.Kind() == domain.OwnerNone {
		return Project(nil, owner, nil, s.currency), nil
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	c, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Project(nil, owner, nil, s.currency), nil
		}
		return nil, err
	}

	products := make(map[string]*domain.Product, len(c.Lines))
	for _, l := range c.Lines {
		if _, seen := products[l.ProductID]; seen {
			continue
		}
		p, err := s.catalog.GetProduct(ctx, l.ProductID)
		switch {
		case err == nil:
			products[l.ProductID] = p
		case errors.Is(err, domain.ErrNotFound):
			products[l.ProductID] = nil
		default:
			return nil, fmt.Errorf("get product: %w", err)
		}
	}
	return Project(c, owner, products, s.currency), nil
}

// MergeGuestIntoUser moves the session's cart into the user's cart. Lines
// with a key already present in the user cart add their quantity to it at the
// user's captured price; the rest are re-parented unchanged. The guest cart
// is deleted. Either all of it happens or none of it does.
func (s *Service) MergeGuestIntoUser(ctx context.Context, sessionToken, userID string) error {
	guest := domain.SessionOwner(strings.TrimSpace(sessionToken))
	user := domain.UserOwner(strings.TrimSpace(userID))
	if err := guest.Validate(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(guest.Key(), user.Key())
	defer unlock()

	var merged, moved int
	err := s.store.WithinTx(ctx, func(tx cartrepo.Store) error {
		for _, o := range orderedOwners(guest, user) {
			if err := tx.LockOwner(ctx, o); err != nil {
				return err
			}
		}

		guestCart, err := tx.FindByOwner(ctx, guest)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("find guest cart: %w", err)
		}
		userCart, err := tx.FindOrCreate(ctx, user)
		if err != nil {
			return fmt.Errorf("find or create user cart: %w", err)
		}

		for _, gl := range guestCart.Lines {
			if existing, ok := userCart.FindLine(gl.Key()); ok {
				total := existing.Quantity + gl.Quantity
				if !domain.ValidQuantity(total) {
					return fmt.Errorf("merge line %s: %w", gl.ID, domain.ErrInvalidQuantity)
				}
				if err := tx.SetLineQuantity(ctx, existing.ID, total); err != nil {
					return fmt.Errorf("merge line %s: %w", gl.ID, err)
				}
				if err := tx.DeleteLine(ctx, gl.ID); err != nil {
					return fmt.Errorf("drop guest line %s: %w", gl.ID, err)
				}
				existing.Quantity = total
				merged++
				continue
			}
			if err := tx.ReassignLine(ctx, gl.ID, userCart.ID); err != nil {
				return fmt.Errorf("move line %s: %w", gl.ID, err)
			}
			gl.CartID = userCart.ID
			userCart.Lines = append(userCart.Lines, gl)
			moved++
		}

		if err := tx.DeleteCart(ctx, guestCart.ID); err != nil {
			return fmt.Errorf("delete guest cart: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Printf("cart engine: merge failed guest=%s user=%s error=%v", guest, user, err)
		return err
	}
	if merged+moved > 0 {
		s.logger.Printf("cart engine: merge guest=%s user=%s merged=%d moved=%d", guest, user, merged, moved)
	}
	return nil
}

func (s *Service) checkOwnership(ctx context.Context, tx cartrepo.Store, owner domain.Owner, lineID string) error {
	if err := tx.LockOwner(ctx, owner); err != nil {
		return err
	}
	line, err := tx.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	c, err := tx.FindByID(ctx, line.CartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLineNotFound
		}
		return err
	}
	if !c.OwnedBy(owner) {
		s.logger.Printf("cart engine: ownership mismatch owner=%s line=%s", owner, lineID)
		return domain.ErrUnauthorized
	}
	return nil
}

func orderedOwners(a, b domain.Owner) []domain.Owner {
	if b.Key() < a.Key() {
		return []domain.Owner{b, a}
	}
	return []domain.Owner{a, b}
}
