package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"bakery-shop/internal/domain"
	categoryrepo "bakery-shop/internal/repository/category"
	productrepo "bakery-shop/internal/repository/product"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type variantSeed struct {
	Size  string
	SKU   string
	Price string
	Promo string
}

type productSeed struct {
	Key         string
	Category    string
	Name        string
	Description string
	Image       string
	Stock       int
	Featured    bool
	Variants    []variantSeed
}

var categories = []domain.Category{
	{Key: "breads", Name: "Breads", Slug: "breads", Description: "Loaves baked every morning", IsActive: true},
	{Key: "viennoiserie", Name: "Viennoiserie", Slug: "viennoiserie", Description: "Laminated doughs and brioche", IsActive: true},
	{Key: "cakes", Name: "Cakes", Slug: "cakes", Description: "Whole cakes and slices", IsActive: true},
}

var products = []productSeed{
	{
		Key: "butter-croissant", Category: "viennoiserie", Name: "Butter Croissant",
		Description: "Twenty-seven layers of cultured butter", Image: "/images/croissant.jpg",
		Stock: 40, Featured: true,
		Variants: []variantSeed{
			{Size: "S", SKU: "CRO-S", Price: "25000"},
			{Size: "M", SKU: "CRO-M", Price: "35000", Promo: "29000"},
		},
	},
	{
		Key: "pain-au-chocolat", Category: "viennoiserie", Name: "Pain au Chocolat",
		Description: "Two batons of dark chocolate", Image: "/images/pain-au-chocolat.jpg",
		Stock: 30,
		Variants: []variantSeed{
			{Size: "M", SKU: "PAC-M", Price: "38000"},
		},
	},
	{
		Key: "country-sourdough", Category: "breads", Name: "Country Sourdough",
		Description: "Long-fermented wheat and rye", Image: "/images/sourdough.jpg",
		Stock: 12, Featured: true,
		Variants: []variantSeed{
			{Size: "Half", SKU: "SOUR-H", Price: "45000"},
			{Size: "Whole", SKU: "SOUR-W", Price: "80000"},
		},
	},
	{
		Key: "baguette", Category: "breads", Name: "Baguette",
		Description: "Crisp crust, open crumb", Image: "/images/baguette.jpg",
		Stock: 50,
		Variants: []variantSeed{
			{Size: "Standard", SKU: "BAG-STD", Price: "22000"},
		},
	},
	{
		Key: "tiramisu-cake", Category: "cakes", Name: "Tiramisu Cake",
		Description: "Mascarpone, espresso, cocoa", Image: "/images/tiramisu.jpg",
		Stock: 6, Featured: true,
		Variants: []variantSeed{
			{Size: "16cm", SKU: "TIR-16", Price: "280000", Promo: "250000"},
			{Size: "20cm", SKU: "TIR-20", Price: "380000"},
		},
	},
}

// Apply inserts the demo bakery catalog. It is idempotent via ON CONFLICT;
// promotions are re-anchored to run for a week from now on every call.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cats := categoryrepo.NewPostgres(pool)
	prods := productrepo.NewPostgres(pool, logger)

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		saved, err := cats.Upsert(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
		categoryIDs[c.Key] = saved.ID
	}

	now := time.Now().UTC().Truncate(time.Second)
	promoStart, promoEnd := now.Add(-time.Hour), now.Add(7*24*time.Hour)

	for _, p := range products {
		saved, err := prods.Upsert(ctx, domain.Product{
			Key:           p.Key,
			CategoryID:    categoryIDs[p.Category],
			Name:          p.Name,
			Description:   p.Description,
			MainImageURL:  p.Image,
			ImageURLs:     []string{p.Image},
			StockQuantity: p.Stock,
			IsFeatured:    p.Featured,
			IsActive:      true,
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
		for _, v := range p.Variants {
			variant := domain.PricedVariant{
				ProductID:    saved.ID,
				SizeLabel:    v.Size,
				SKU:          v.SKU,
				RegularPrice: decimal.RequireFromString(v.Price),
			}
			if v.Promo != "" {
				variant.PromotionPrice = decimal.NewNullDecimal(decimal.RequireFromString(v.Promo))
				variant.PromotionStart = &promoStart
				variant.PromotionEnd = &promoEnd
			}
			if _, err := prods.UpsertVariant(ctx, variant); err != nil {
				return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
			}
		}
	}

	logger.Printf("seed: categories=%d products=%d", len(categories), len(products))
	return nil
}
