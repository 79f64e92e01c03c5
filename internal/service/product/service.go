package product

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"bakery-shop/internal/domain"
	productrepo "bakery-shop/internal/repository/product"
	"bakery-shop/internal/service/pricing"
	"github.com/shopspring/decimal"
)

const (
	topViewedLimit = 10
	featuredLimit  = 50
	relatedLimit   = 8
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
	now    func() time.Time
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// View is a product with its variants priced at the moment it was built.
type View struct {
	domain.Product
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
	Sizes    []SizeView      `json:"sizes"`
}

type SizeView struct {
	domain.PricedVariant
	EffectivePrice     decimal.Decimal `json:"effectivePrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	PromotionActive    bool            `json:"isPromotionActive"`
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, products)
}

func (s *Service) Featured(ctx context.Context) ([]View, error) {
	products, err := s.repo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, products)
}

func (s *Service) TopViewed(ctx context.Context) ([]View, error) {
	products, err := s.repo.ListTopViewed(ctx, topViewedLimit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, products)
}

func (s *Service) ByCategory(ctx context.Context, categoryID string) ([]View, error) {
	products, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, products)
}

// Detail returns an active product and records the view.
func (s *Service) Detail(ctx context.Context, id string) (*View, error) {
	p, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViewCount(ctx, p.ID); err != nil {
		s.logger.Printf("product service: view count id=%s error=%v", p.ID, err)
	} else {
		p.ViewCount++
	}
	v, err := s.view(ctx, *p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Related lists other active products of the same category.
func (s *Service) Related(ctx context.Context, id string) ([]View, error) {
	p, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CategoryID == "" {
		return []View{}, nil
	}
	siblings, err := s.repo.ListByCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	related := make([]domain.Product, 0, relatedLimit)
	for _, sib := range siblings {
		if sib.ID == p.ID {
			continue
		}
		related = append(related, sib)
		if len(related) == relatedLimit {
			break
		}
	}
	return s.views(ctx, related)
}

func (s *Service) active(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *Service) views(ctx context.Context, products []domain.Product) ([]View, error) {
	out := make([]View, 0, len(products))
	for _, p := range products {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, p domain.Product) (View, error) {
	variants, err := s.repo.ListVariants(ctx, p.ID)
	if err != nil {
		return View{}, err
	}
	now := s.now()
	v := View{Product: p, Sizes: make([]SizeView, 0, len(variants))}
	for _, pv := range variants {
		q := pricing.QuoteVariant(&pv, now)
		v.Sizes = append(v.Sizes, SizeView{
			PricedVariant:      pv,
			EffectivePrice:     q.Price,
			DiscountPercentage: q.DiscountPercent,
			PromotionActive:    q.PromotionActive,
		})
	}
	if low, high, ok := pricing.Range(variants, now); ok {
		v.MinPrice, v.MaxPrice = low, high
	}
	return v, nil
}
