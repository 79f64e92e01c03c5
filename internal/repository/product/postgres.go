package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"bakery-shop/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, key, COALESCE(category_id::text, ''), name, COALESCE(description, ''), COALESCE(main_image_url, ''),
       image_urls, stock_quantity, is_featured, is_active, view_count, sold_count, created_at, updated_at`

const variantColumns = `id::text, product_id::text, size_label, sku, regular_price, promotion_price, promotion_start, promotion_end, created_at, updated_at`

func (r *postgresRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetVariant(ctx context.Context, id string) (*domain.PricedVariant, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	v, err := scanVariant(r.pool.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get variant id=%s error=%v", id, err)
		return nil, err
	}
	return v, nil
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	return r.listProducts(ctx, "list", `
SELECT `+productColumns+`
FROM products
WHERE is_active
ORDER BY created_at DESC, id
`)
}

func (r *postgresRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.listProducts(ctx, "featured", `
SELECT `+productColumns+`
FROM products
WHERE is_active AND is_featured
ORDER BY created_at DESC, id
LIMIT $1
`, limit)
}

func (r *postgresRepo) ListTopViewed(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.listProducts(ctx, "top viewed", `
SELECT `+productColumns+`
FROM products
WHERE is_active
ORDER BY view_count DESC, id
LIMIT $1
`, limit)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if uuid.Validate(categoryID) != nil {
		return nil, nil
	}
	return r.listProducts(ctx, "by category", `
SELECT `+productColumns+`
FROM products
WHERE is_active AND category_id = $1
ORDER BY name ASC
`, categoryID)
}

func (r *postgresRepo) ListVariants(ctx context.Context, productID string) ([]domain.PricedVariant, error) {
	if uuid.Validate(productID) != nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+variantColumns+`
FROM product_variants
WHERE product_id = $1
ORDER BY regular_price ASC, size_label ASC
`, productID)
	if err != nil {
		r.logger.Printf("product repo: variants product_id=%s error=%v", productID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.PricedVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (r *postgresRepo) IncrementViewCount(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	const q = `
INSERT INTO products (id, key, category_id, name, description, main_image_url, image_urls, stock_quantity, is_featured, is_active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, '')::uuid, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10)
ON CONFLICT (key) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    main_image_url = EXCLUDED.main_image_url,
    image_urls = EXCLUDED.image_urls,
    stock_quantity = EXCLUDED.stock_quantity,
    is_featured = EXCLUDED.is_featured,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID,
		p.Key,
		p.CategoryID,
		p.Name,
		p.Description,
		p.MainImageURL,
		images,
		p.StockQuantity,
		p.IsFeatured,
		p.IsActive,
	))
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s error=%v", p.Key, err)
		return nil, err
	}
	if p.ID != "" && res.ID != p.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", p.Key, res.ID, p.ID)
	}
	r.logger.Printf("product repo: upserted key=%s id=%s", res.Key, res.ID)
	return res, nil
}

func (r *postgresRepo) UpsertVariant(ctx context.Context, v domain.PricedVariant) (*domain.PricedVariant, error) {
	const q = `
INSERT INTO product_variants (id, product_id, size_label, sku, regular_price, promotion_price, promotion_start, promotion_end)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2::uuid, $3, $4, $5::numeric, $6::numeric, $7, $8)
ON CONFLICT (sku) DO UPDATE SET
    product_id = EXCLUDED.product_id,
    size_label = EXCLUDED.size_label,
    regular_price = EXCLUDED.regular_price,
    promotion_price = EXCLUDED.promotion_price,
    promotion_start = EXCLUDED.promotion_start,
    promotion_end = EXCLUDED.promotion_end,
    updated_at = now()
RETURNING ` + variantColumns
	res, err := scanVariant(r.pool.QueryRow(ctx, q,
		v.ID,
		v.ProductID,
		v.SizeLabel,
		v.SKU,
		v.RegularPrice,
		v.PromotionPrice,
		v.PromotionStart,
		v.PromotionEnd,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrProductNotFound
		}
		r.logger.Printf("product repo: upsert variant sku=%s error=%v", v.SKU, err)
		return nil, err
	}
	if v.ID != "" && res.ID != v.ID {
		return nil, fmt.Errorf("product repo: id mismatch for sku=%s existing_id=%s import_id=%s", v.SKU, res.ID, v.ID)
	}
	return res, nil
}

func (r *postgresRepo) listProducts(ctx context.Context, op, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: %s error=%v", op, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: %s rows error=%v", op, err)
		return nil, err
	}
	r.logger.Printf("product repo: %s count=%d", op, len(result))
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Key,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.MainImageURL,
		&p.ImageURLs,
		&p.StockQuantity,
		&p.IsFeatured,
		&p.IsActive,
		&p.ViewCount,
		&p.SoldCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanVariant(row pgx.Row) (*domain.PricedVariant, error) {
	var v domain.PricedVariant
	if err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.SizeLabel,
		&v.SKU,
		&v.RegularPrice,
		&v.PromotionPrice,
		&v.PromotionStart,
		&v.PromotionEnd,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
