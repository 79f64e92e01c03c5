package cart_test

import (
	"context"
	"errors"
	"testing"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/repository/cart"
	"bakery-shop/internal/testdb"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type postgresStoreSuite struct {
	suite.Suite

	pool  *pgxpool.Pool
	store cart.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(postgresStoreSuite))
}

// before all tests in the suite
func (s *postgresStoreSuite) SetupSuite() {
	s.pool = testdb.Pool(s.T())
	s.store = cart.NewPostgres(s.pool, nil)
}

func (s *postgresStoreSuite) TearDownTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE TABLE carts CASCADE")
	s.NoError(err)
}

func (s *postgresStoreSuite) TestFindOrCreate() {
	t := s.T()
	ctx := t.Context()
	owner := domain.UserOwner(gofakeit.UUID())

	first, err := s.store.FindOrCreate(ctx, owner)
	require.NoError(t, err)
	second, err := s.store.FindOrCreate(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, owner, second.Owner)
	assert.False(t, second.CreatedAt.IsZero())

	_, err = s.store.FindByOwner(ctx, domain.SessionOwner(gofakeit.UUID()))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (s *postgresStoreSuite) TestSameIDDifferentKinds() {
	t := s.T()
	ctx := t.Context()
	id := gofakeit.UUID()

	asUser, err := s.store.FindOrCreate(ctx, domain.UserOwner(id))
	require.NoError(t, err)
	asSession, err := s.store.FindOrCreate(ctx, domain.SessionOwner(id))
	require.NoError(t, err)

	assert.NotEqual(t, asUser.ID, asSession.ID)
}

func (s *postgresStoreSuite) TestUpsertLine() {
	size := "L"
	variant := gofakeit.UUID()

	tests := []struct {
		name    string
		adds    []domain.CartLine
		wantQty []int
		wantErr error
	}{
		{
			name:    "same key consolidates",
			adds:    []domain.CartLine{randomLine("p-1", &size, &variant, 2, "45000"), randomLine("p-1", &size, &variant, 3, "30000")},
			wantQty: []int{5},
		},
		{
			name:    "null size and variant consolidate",
			adds:    []domain.CartLine{randomLine("p-1", nil, nil, 1, "10"), randomLine("p-1", nil, nil, 1, "10")},
			wantQty: []int{2},
		},
		{
			name:    "different size stays apart",
			adds:    []domain.CartLine{randomLine("p-1", &size, &variant, 1, "10"), randomLine("p-1", nil, &variant, 1, "10")},
			wantQty: []int{1, 1},
		},
		{
			name:    "zero quantity rejected",
			adds:    []domain.CartLine{randomLine("p-1", nil, nil, 0, "10")},
			wantErr: domain.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()
			ctx := t.Context()
			c, err := s.store.FindOrCreate(ctx, domain.SessionOwner(gofakeit.UUID()))
			require.NoError(t, err)

			var last *domain.CartLine
			for _, add := range tt.adds {
				last, err = s.store.UpsertLine(ctx, c.ID, add)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
			}

			got, err := s.store.FindByID(ctx, c.ID)
			require.NoError(t, err)
			require.Len(t, got.Lines, len(tt.wantQty))
			for i, qty := range tt.wantQty {
				assert.Equal(t, qty, got.Lines[i].Quantity)
			}
			assertLine(t, *last, got.Lines[len(got.Lines)-1])
			assert.True(t, tt.adds[0].UnitPrice.Equal(got.Lines[0].UnitPrice), "first captured price wins")
		})
	}
}

func (s *postgresStoreSuite) TestLineMutations() {
	t := s.T()
	ctx := t.Context()
	c, err := s.store.FindOrCreate(ctx, domain.UserOwner(gofakeit.UUID()))
	require.NoError(t, err)
	line, err := s.store.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, 1, "99.99"))
	require.NoError(t, err)

	require.NoError(t, s.store.SetLineQuantity(ctx, line.ID, 9))
	got, err := s.store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)

	require.ErrorIs(t, s.store.SetLineQuantity(ctx, gofakeit.UUID(), 2), domain.ErrLineNotFound)
	require.NoError(t, s.store.DeleteLine(ctx, line.ID))
	require.ErrorIs(t, s.store.DeleteLine(ctx, line.ID), domain.ErrLineNotFound)
	_, err = s.store.GetLine(ctx, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func (s *postgresStoreSuite) TestDeleteCartCascades() {
	t := s.T()
	ctx := t.Context()
	owner := domain.SessionOwner(gofakeit.UUID())
	c, err := s.store.FindOrCreate(ctx, owner)
	require.NoError(t, err)
	line, err := s.store.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, 1, "1"))
	require.NoError(t, err)

	require.NoError(t, s.store.DeleteCart(ctx, c.ID))
	require.ErrorIs(t, s.store.DeleteCart(ctx, c.ID), domain.ErrNotFound)

	_, err = s.store.FindByOwner(ctx, owner)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.store.GetLine(ctx, line.ID)
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func (s *postgresStoreSuite) TestReassignLine() {
	t := s.T()
	ctx := t.Context()
	guest, err := s.store.FindOrCreate(ctx, domain.SessionOwner(gofakeit.UUID()))
	require.NoError(t, err)
	user, err := s.store.FindOrCreate(ctx, domain.UserOwner(gofakeit.UUID()))
	require.NoError(t, err)

	moved, err := s.store.UpsertLine(ctx, guest.ID, randomLine("p-1", nil, nil, 2, "5"))
	require.NoError(t, err)
	clash, err := s.store.UpsertLine(ctx, guest.ID, randomLine("p-2", nil, nil, 1, "5"))
	require.NoError(t, err)
	_, err = s.store.UpsertLine(ctx, user.ID, randomLine("p-2", nil, nil, 1, "5"))
	require.NoError(t, err)

	require.NoError(t, s.store.ReassignLine(ctx, moved.ID, user.ID))
	require.ErrorIs(t, s.store.ReassignLine(ctx, clash.ID, user.ID), domain.ErrStaleWrite)

	got, err := s.store.GetLine(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.CartID)
	assertLine(t, *moved, *got, "CartID")
}

func (s *postgresStoreSuite) TestWithinTxRollsBack() {
	t := s.T()
	ctx := t.Context()
	owner := domain.UserOwner(gofakeit.UUID())
	boom := errors.New("boom")

	err := s.store.WithinTx(ctx, func(tx cart.Store) error {
		if err := tx.LockOwner(ctx, owner); err != nil {
			return err
		}
		c, err := tx.FindOrCreate(ctx, owner)
		if err != nil {
			return err
		}
		if _, err := tx.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, 1, "1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.store.FindByOwner(ctx, owner)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (s *postgresStoreSuite) TestWithinTxRollsBackOnPanic() {
	t := s.T()
	ctx := t.Context()
	owner := domain.UserOwner(gofakeit.UUID())

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.store.WithinTx(ctx, func(tx cart.Store) error {
			if err := tx.LockOwner(ctx, owner); err != nil {
				return err
			}
			if _, err := tx.FindOrCreate(ctx, owner); err != nil {
				return err
			}
			panic("boom")
		})
	})

	assert.Zero(t, s.pool.Stat().AcquiredConns(), "connection released")
	_, err := s.store.FindByOwner(ctx, owner)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (s *postgresStoreSuite) TestQuantityCap() {
	t := s.T()
	ctx := t.Context()
	c, err := s.store.FindOrCreate(ctx, domain.SessionOwner(gofakeit.UUID()))
	require.NoError(t, err)

	_, err = s.store.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, domain.MaxLineQuantity+1, "1"))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	line, err := s.store.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, domain.MaxLineQuantity, "1"))
	require.NoError(t, err)
	_, err = s.store.UpsertLine(ctx, c.ID, randomLine("p-1", nil, nil, 1, "1"))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.ErrorIs(t, s.store.SetLineQuantity(ctx, line.ID, domain.MaxLineQuantity+1), domain.ErrInvalidQuantity)

	got, err := s.store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLineQuantity, got.Quantity)
}

func (s *postgresStoreSuite) TestMalformedIDs() {
	t := s.T()
	ctx := t.Context()
	const bad = "not-a-uuid"

	_, err := s.store.FindByID(ctx, bad)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.store.UpsertLine(ctx, bad, randomLine("p-1", nil, nil, 1, "1"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, s.store.SetLineQuantity(ctx, bad, 1), domain.ErrLineNotFound)
	require.ErrorIs(t, s.store.DeleteLine(ctx, bad), domain.ErrLineNotFound)
	require.ErrorIs(t, s.store.DeleteAllLines(ctx, bad), domain.ErrNotFound)
	require.ErrorIs(t, s.store.DeleteCart(ctx, bad), domain.ErrNotFound)
	require.ErrorIs(t, s.store.ReassignLine(ctx, bad, gofakeit.UUID()), domain.ErrLineNotFound)
	require.ErrorIs(t, s.store.ReassignLine(ctx, gofakeit.UUID(), bad), domain.ErrNotFound)
}

func (s *postgresStoreSuite) TestConcurrentLockedUpserts() {
	t := s.T()
	ctx := t.Context()
	owner := domain.SessionOwner(gofakeit.UUID())
	const workers = 8

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			return s.store.WithinTx(gctx, func(tx cart.Store) error {
				if err := tx.LockOwner(gctx, owner); err != nil {
					return err
				}
				c, err := tx.FindOrCreate(gctx, owner)
				if err != nil {
					return err
				}
				_, err = tx.UpsertLine(gctx, c.ID, randomLine("p-1", nil, nil, 1, "2"))
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	got, err := s.store.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, workers, got.Lines[0].Quantity)
}

func assertLine(t *testing.T, expected, actual domain.CartLine, ignore ...string) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.CartLine{}, append([]string{"Quantity", "UpdatedAt", "CreatedAt"}, ignore...)...),
	}
	assert.Empty(t, cmp.Diff(expected, actual, opts))
	assert.False(t, actual.CreatedAt.IsZero())
}
