package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bakery-shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, variant domain.PricedVariant) (*domain.PricedVariant, error)
}

type CategoryStore interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
	ListActive(ctx context.Context) ([]domain.Category, error)
}

// CSVImporter loads catalog CSV files. Product files carry one row per
// variant; product columns may repeat or stay blank on continuation rows.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryStore
	line       int
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryStore) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// DetectKind reads the header row of r and reports which kind of file it is.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers))
}

func kindOf(index map[string]int) (Kind, error) {
	_, hasKey := index["key"]
	_, hasName := index["name"]
	_, hasSKU := index["sku"]
	switch {
	case hasKey && hasName && hasSKU:
		return KindProducts, nil
	case hasKey && hasName:
		return KindCategories, nil
	default:
		return "", errors.New("unrecognised csv: expected key and name columns")
	}
}

// Run imports every row and returns the number of products or categories
// written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	i.line = 1
	index := headerIndex(headers)
	kind, err := kindOf(index)
	if err != nil {
		return 0, err
	}
	if kind == KindCategories {
		return i.runCategories(ctx, index)
	}
	return i.runProducts(ctx, index)
}

type productGroup struct {
	product  domain.Product
	category string
	variants []domain.PricedVariant
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.products == nil {
		return 0, errors.New("product import needs a product writer")
	}
	categoryIDs, err := i.categoryIndex(ctx)
	if err != nil {
		return 0, err
	}

	var (
		current  *productGroup
		imported int
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.save(ctx, current, categoryIDs); err != nil {
			return err
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		i.line++

		key := pick(record, index, "key")
		if key != "" && (current == nil || current.product.Key != key) {
			if err := flush(); err != nil {
				return imported, err
			}
			current, err = parseProduct(record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", i.line, err)
			}
		}
		if current == nil {
			return imported, fmt.Errorf("line %d: continuation row before any product", i.line)
		}

		if img := pick(record, index, "images"); img != "" && key == "" {
			current.product.ImageURLs = append(current.product.ImageURLs, splitList(img)...)
		}
		if pick(record, index, "sku") == "" {
			continue
		}
		v, err := parseVariant(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", i.line, err)
		}
		current.variants = append(current.variants, v)
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, g *productGroup, categoryIDs map[string]string) error {
	if len(g.variants) == 0 {
		return fmt.Errorf("product %q has no variants", g.product.Key)
	}
	if g.category != "" {
		id, ok := categoryIDs[g.category]
		if !ok {
			return fmt.Errorf("product %q: unknown category %q", g.product.Key, g.category)
		}
		g.product.CategoryID = id
	}
	if g.product.MainImageURL == "" && len(g.product.ImageURLs) > 0 {
		g.product.MainImageURL = g.product.ImageURLs[0]
	}

	saved, err := i.products.Upsert(ctx, g.product)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", g.product.Key, err)
	}
	for _, v := range g.variants {
		v.ProductID = saved.ID
		if _, err := i.products.UpsertVariant(ctx, v); err != nil {
			return fmt.Errorf("upsert variant %q: %w", v.SKU, err)
		}
	}
	return nil
}

func (i *CSVImporter) categoryIndex(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if i.categories == nil {
		return out, nil
	}
	list, err := i.categories.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range list {
		out[c.Key] = c.ID
	}
	return out, nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categories == nil {
		return 0, errors.New("category import needs a category store")
	}
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		i.line++

		c := domain.Category{
			Key:         pick(record, index, "key"),
			Name:        pick(record, index, "name"),
			Slug:        pick(record, index, "slug"),
			Description: pick(record, index, "description"),
			IsActive:    true,
		}
		if c.Key == "" && c.Name == "" {
			continue
		}
		if c.Key == "" || c.Name == "" {
			return imported, fmt.Errorf("line %d: category needs key and name", i.line)
		}
		if c.Slug == "" {
			c.Slug = c.Key
		}
		if raw := pick(record, index, "active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				return imported, fmt.Errorf("line %d: invalid active flag %q", i.line, raw)
			}
			c.IsActive = active
		}
		if _, err := i.categories.Upsert(ctx, c); err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", c.Key, err)
		}
		imported++
	}
	return imported, nil
}

func parseProduct(record []string, index map[string]int) (*productGroup, error) {
	p := domain.Product{
		ID:          pick(record, index, "id"),
		Key:         pick(record, index, "key"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURLs:   splitList(pick(record, index, "images")),
		IsActive:    true,
	}
	if p.Name == "" {
		return nil, fmt.Errorf("product %q has no name", p.Key)
	}
	if p.ID != "" {
		if err := uuid.Validate(p.ID); err != nil {
			return nil, fmt.Errorf("invalid id for product %q: %w", p.Key, err)
		}
	}
	if raw := pick(record, index, "stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid stock for product %q: %q", p.Key, raw)
		}
		p.StockQuantity = n
	}
	var err error
	if p.IsFeatured, err = parseFlag(record, index, "featured", false); err != nil {
		return nil, err
	}
	if p.IsActive, err = parseFlag(record, index, "active", true); err != nil {
		return nil, err
	}
	return &productGroup{product: p, category: pick(record, index, "category")}, nil
}

func parseVariant(record []string, index map[string]int) (domain.PricedVariant, error) {
	v := domain.PricedVariant{
		ID:        pick(record, index, "variant_id"),
		SizeLabel: pick(record, index, "size"),
		SKU:       pick(record, index, "sku"),
	}
	if v.ID != "" {
		if err := uuid.Validate(v.ID); err != nil {
			return v, fmt.Errorf("invalid variant id for sku %q: %w", v.SKU, err)
		}
	}
	if v.SizeLabel == "" {
		return v, fmt.Errorf("variant %q has no size", v.SKU)
	}
	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || !price.IsPositive() {
		return v, fmt.Errorf("variant %q needs a positive price", v.SKU)
	}
	v.RegularPrice = price

	raw := pick(record, index, "promotion_price")
	if raw == "" {
		return v, nil
	}
	promo, err := decimal.NewFromString(raw)
	if err != nil || !promo.IsPositive() {
		return v, fmt.Errorf("variant %q: invalid promotion price %q", v.SKU, raw)
	}
	start, err := parseTime(record, index, "promotion_start")
	if err != nil {
		return v, fmt.Errorf("variant %q: %w", v.SKU, err)
	}
	end, err := parseTime(record, index, "promotion_end")
	if err != nil {
		return v, fmt.Errorf("variant %q: %w", v.SKU, err)
	}
	if start == nil || end == nil || !start.Before(*end) {
		return v, fmt.Errorf("variant %q: promotion needs a start before its end", v.SKU)
	}
	v.PromotionPrice = decimal.NewNullDecimal(promo)
	v.PromotionStart = start
	v.PromotionEnd = end
	return v, nil
}

func parseFlag(record []string, index map[string]int, key string, def bool) (bool, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s flag %q", key, raw)
	}
	return b, nil
}

func parseTime(record []string, index map[string]int, key string) (*time.Time, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	t = t.UTC()
	return &t, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
