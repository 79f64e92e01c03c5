package token

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"bakery-shop/internal/domain"
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

func (r *postgresRepo) Create(ctx context.Context, t Token) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO tokens (token_hash, customer_id, kind, expires_at)
VALUES ($1, $2::uuid, $3, $4)
`, t.Hash, t.CustomerID, string(t.Kind), t.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return domain.ErrAlreadyExists
			case "23503":
				return domain.ErrNotFound
			}
		}
		r.logger.Printf("token repo: create customer_id=%s kind=%s error=%v", t.CustomerID, t.Kind, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, hash string) (*Token, error) {
	var (
		out  Token
		kind string
	)
	err := r.pool.QueryRow(ctx, `
SELECT token_hash, customer_id::text, kind, expires_at, created_at
FROM tokens
WHERE token_hash = $1
`, hash).Scan(&out.Hash, &out.CustomerID, &kind, &out.ExpiresAt, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out.Kind = Kind(kind)
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, hash string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE token_hash = $1`, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Printf("token repo: purged expired=%d", n)
	}
	return cmd.RowsAffected(), nil
}
