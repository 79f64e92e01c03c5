package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakery-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	products map[string]domain.Product
	variants map[string][]domain.PricedVariant
	views    map[string]int
}

func newStubRepo() *stubRepo {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	return &stubRepo{
		products: map[string]domain.Product{
			"p1": {ID: "p1", Name: "Sourdough", CategoryID: "c1", IsActive: true},
			"p2": {ID: "p2", Name: "Rye", CategoryID: "c1", IsActive: true},
			"p3": {ID: "p3", Name: "Panettone", CategoryID: "c1", IsActive: false},
		},
		variants: map[string][]domain.PricedVariant{
			"p1": {
				{ID: "v1", ProductID: "p1", SizeLabel: "S", RegularPrice: decimal.RequireFromString("30000"),
					PromotionPrice: decimal.NewNullDecimal(decimal.RequireFromString("20000")), PromotionStart: &start, PromotionEnd: &end},
				{ID: "v2", ProductID: "p1", SizeLabel: "L", RegularPrice: decimal.RequireFromString("55000")},
			},
		},
		views: map[string]int{},
	}
}

func (r *stubRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *stubRepo) GetVariant(context.Context, string) (*domain.PricedVariant, error) {
	return nil, domain.ErrNotFound
}

func (r *stubRepo) ListActive(context.Context) ([]domain.Product, error) {
	return []domain.Product{r.products["p1"], r.products["p2"]}, nil
}

func (r *stubRepo) ListFeatured(context.Context, int) ([]domain.Product, error) { return nil, nil }

func (r *stubRepo) ListTopViewed(context.Context, int) ([]domain.Product, error) { return nil, nil }

func (r *stubRepo) ListByCategory(_ context.Context, categoryID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range []string{"p1", "p2"} {
		if r.products[id].CategoryID == categoryID {
			out = append(out, r.products[id])
		}
	}
	return out, nil
}

func (r *stubRepo) ListVariants(_ context.Context, productID string) ([]domain.PricedVariant, error) {
	return r.variants[productID], nil
}

func (r *stubRepo) IncrementViewCount(_ context.Context, id string) error {
	r.views[id]++
	return nil
}

func (r *stubRepo) Upsert(context.Context, domain.Product) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) UpsertVariant(context.Context, domain.PricedVariant) (*domain.PricedVariant, error) {
	return nil, errors.New("not implemented")
}

func TestDetailPricesVariantsAndCountsView(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }

	v, err := svc.Detail(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if repo.views["p1"] != 1 || v.ViewCount != 1 {
		t.Fatalf("expected one recorded view, got repo=%d view=%d", repo.views["p1"], v.ViewCount)
	}
	if v.MinPrice.String() != "20000" || v.MaxPrice.String() != "55000" {
		t.Fatalf("unexpected range %s..%s", v.MinPrice, v.MaxPrice)
	}
	if len(v.Sizes) != 2 || !v.Sizes[0].PromotionActive || v.Sizes[0].DiscountPercentage != 33 {
		t.Fatalf("unexpected sizes %+v", v.Sizes)
	}
}

func TestDetailInactiveOrMissing(t *testing.T) {
	svc := New(newStubRepo(), nil)

	for _, id := range []string{"p3", "nope"} {
		if _, err := svc.Detail(context.Background(), id); !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("id=%s: expected ErrProductNotFound, got %v", id, err)
		}
	}
}

func TestListWithoutVariantsHasZeroRange(t *testing.T) {
	svc := New(newStubRepo(), nil)

	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if !views[1].MinPrice.IsZero() || views[1].Sizes == nil {
		t.Fatalf("unexpected view %+v", views[1])
	}
}

func TestRelatedExcludesSelf(t *testing.T) {
	svc := New(newStubRepo(), nil)

	views, err := svc.Related(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(views) != 1 || views[0].ID != "p2" {
		t.Fatalf("unexpected related %+v", views)
	}
}
