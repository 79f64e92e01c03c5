package category

import (
	"context"
	"errors"

	"bakery-shop/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const columns = `id::text, key, name, COALESCE(slug, ''), COALESCE(description, ''), is_active, created_at`

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM categories WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (key, name, slug, description, is_active)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    slug = COALESCE(EXCLUDED.slug, categories.slug),
    description = COALESCE(EXCLUDED.description, categories.description),
    is_active = EXCLUDED.is_active
RETURNING ` + columns
	return scan(r.pool.QueryRow(ctx, q, c.Key, c.Name, c.Slug, c.Description, c.IsActive))
}

func scan(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Key, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
