package cart

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

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	q      querier
	pool   *pgxpool.Pool // nil inside a transaction
	logger *log.Logger
}

// NewPostgres returns a Store backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{q: pool, pool: pool, logger: logger}
}

const cartColumns = `id::text, user_id, session_token, created_at, updated_at`

const lineColumns = `id::text, cart_id::text, product_id, size_label, variant_id, quantity, unit_price, created_at, updated_at`

func (r *postgresRepo) FindOrCreate(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	userID, sessionToken, err := ownerColumns(owner)
	if err != nil {
		return nil, err
	}
	// A concurrent insert for the same owner makes this a no-op; the select
	// below then sees the committed row.
	if _, err := r.q.Exec(ctx, `
INSERT INTO carts (user_id, session_token)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, userID, sessionToken); err != nil {
		return nil, translate(err)
	}
	return r.FindByOwner(ctx, owner)
}

func (r *postgresRepo) FindByOwner(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	userID, sessionToken, err := ownerColumns(owner)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, *userID)
	}
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE session_token = $1`, *sessionToken)
}

func (r *postgresRepo) FindByID(ctx context.Context, cartID string) (*domain.Cart, error) {
	if uuid.Validate(cartID) != nil {
		return nil, domain.ErrNotFound
	}
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, cartID)
}

func (r *postgresRepo) GetLine(ctx context.Context, lineID string) (*domain.CartLine, error) {
	if uuid.Validate(lineID) != nil {
		return nil, domain.ErrLineNotFound
	}
	line, err := scanLine(r.q.QueryRow(ctx, `SELECT `+lineColumns+` FROM cart_lines WHERE id = $1`, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLineNotFound
		}
		return nil, translate(err)
	}
	return line, nil
}

func (r *postgresRepo) UpsertLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartLine, error) {
	if !domain.ValidQuantity(line.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if uuid.Validate(cartID) != nil {
		return nil, domain.ErrNotFound
	}
	// The WHERE clause skips the update, and so returns no row, when the
	// consolidated quantity would exceed the cap.
	const q = `
INSERT INTO cart_lines (cart_id, product_id, size_label, variant_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6::numeric)
ON CONFLICT ON CONSTRAINT cart_lines_consolidation_key DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity,
    updated_at = clock_timestamp()
WHERE cart_lines.quantity + EXCLUDED.quantity <= $7
RETURNING ` + lineColumns
	out, err := scanLine(r.q.QueryRow(ctx, q, cartID, line.ProductID, line.SizeLabel, line.VariantID, line.Quantity, line.UnitPrice, domain.MaxLineQuantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidQuantity
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: upsert line cart_id=%s product_id=%s error=%v", cartID, line.ProductID, err)
		return nil, translate(err)
	}
	if err := r.touch(ctx, cartID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, lineID string, quantity int) error {
	if !domain.ValidQuantity(quantity) {
		return domain.ErrInvalidQuantity
	}
	if uuid.Validate(lineID) != nil {
		return domain.ErrLineNotFound
	}
	var cartID string
	err := r.q.QueryRow(ctx, `
UPDATE cart_lines
SET quantity = $1, updated_at = clock_timestamp()
WHERE id = $2
RETURNING cart_id::text
`, quantity, lineID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLineNotFound
		}
		return translate(err)
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) DeleteLine(ctx context.Context, lineID string) error {
	if uuid.Validate(lineID) != nil {
		return domain.ErrLineNotFound
	}
	var cartID string
	err := r.q.QueryRow(ctx, `DELETE FROM cart_lines WHERE id = $1 RETURNING cart_id::text`, lineID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLineNotFound
		}
		return translate(err)
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) DeleteAllLines(ctx context.Context, cartID string) error {
	if uuid.Validate(cartID) != nil {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return translate(err)
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) DeleteCart(ctx context.Context, cartID string) error {
	if uuid.Validate(cartID) != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ReassignLine(ctx context.Context, lineID, newCartID string) error {
	if uuid.Validate(lineID) != nil {
		return domain.ErrLineNotFound
	}
	if uuid.Validate(newCartID) != nil {
		return domain.ErrNotFound
	}
	var oldCartID string
	err := r.q.QueryRow(ctx, `
UPDATE cart_lines AS l
SET cart_id = $1, updated_at = clock_timestamp()
FROM cart_lines AS prev
WHERE l.id = prev.id AND l.id = $2
RETURNING prev.cart_id::text
`, newCartID, lineID).Scan(&oldCartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLineNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return translate(err)
	}
	if err := r.touch(ctx, oldCartID); err != nil {
		return err
	}
	return r.touch(ctx, newCartID)
}

func (r *postgresRepo) LockOwner(ctx context.Context, owner domain.Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if r.pool != nil {
		return nil
	}
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, owner.Key()); err != nil {
		return translate(err)
	}
	return nil
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx Store) error) (txErr error) {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	// Runs on error, on panic and after commit, where it is a no-op. A panic
	// in fn keeps unwinding once the connection is released.
	defer func() {
		rollbackErr := tx.Rollback(ctx)
		if txErr != nil && rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
		}
	}()

	if err := fn(&postgresRepo{q: tx, logger: r.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(fmt.Errorf("tx.Commit: %w", err))
	}
	return nil
}

func (r *postgresRepo) touch(ctx context.Context, cartID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE carts SET updated_at = clock_timestamp() WHERE id = $1`, cartID); err != nil {
		return translate(err)
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...any) (*domain.Cart, error) {
	var (
		cart         domain.Cart
		userID       *string
		sessionToken *string
	)
	err := r.q.QueryRow(ctx, cartQuery, args...).Scan(&cart.ID, &userID, &sessionToken, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translate(err)
	}
	switch {
	case userID != nil:
		cart.Owner = domain.UserOwner(*userID)
	case sessionToken != nil:
		cart.Owner = domain.SessionOwner(*sessionToken)
	}

	rows, err := r.q.Query(ctx, `
SELECT `+lineColumns+`
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC, id ASC
`, cart.ID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func scanLine(row pgx.Row) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := row.Scan(
		&line.ID,
		&line.CartID,
		&line.ProductID,
		&line.SizeLabel,
		&line.VariantID,
		&line.Quantity,
		&line.UnitPrice,
		&line.CreatedAt,
		&line.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &line, nil
}

func ownerColumns(owner domain.Owner) (userID, sessionToken *string, err error) {
	if err := owner.Validate(); err != nil {
		return nil, nil, err
	}
	if id, ok := owner.UserID(); ok {
		return &id, nil, nil
	}
	token, _ := owner.SessionToken()
	return nil, &token, nil
}

// translate maps Postgres conflict codes onto domain errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return fmt.Errorf("%w: %s", domain.ErrStaleWrite, pgErr.Message)
		case "23514":
			return fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, pgErr.Message)
		}
	}
	return err
}
