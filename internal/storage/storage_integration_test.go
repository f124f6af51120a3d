//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/agamariel/cocapremium/internal/migrations"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDBPool(t *testing.T) *pgxpool.Pool {
	dbURI := os.Getenv("DATABASE_URI")
	if dbURI == "" {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}

	db, err := sql.Open("pgx", dbURI)
	require.NoError(t, err)
	_, err = migrations.Run(context.Background(), db)
	require.NoError(t, err)
	db.Close()

	pool, err := pgxpool.New(context.Background(), dbURI)
	if err != nil {
		t.Fatalf("Unable to connect to database: %v", err)
	}

	return pool
}

func newTestOrder(t *testing.T) *models.NewOrder {
	t.Helper()
	number, err := utils.NewOrderNumber(time.Now())
	require.NoError(t, err)
	return &models.NewOrder{
		Number:             number,
		CustomerName:       "María",
		PackageID:          "pkg3",
		PackageDescription: "Premium - 15 Bs - 70 g",
		Flavors:            []string{"Limón", "Red Bull"},
		Sweetness:          models.SweetnessMedium,
		CrushType:          "LIGERO",
		Amount:             decimal.NewFromInt(15),
		PaymentProofURL:    "http://localhost:5000/api/proofs/x.png",
	}
}

func TestPostgresCatalogStorage(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	s := NewPostgresCatalogStorage(pool)
	ctx := context.Background()

	t.Run("packages ordered by price", func(t *testing.T) {
		pkgs, err := s.ListPackages(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, pkgs)
		for i := 1; i < len(pkgs); i++ {
			assert.True(t, pkgs[i-1].Price.LessThanOrEqual(pkgs[i].Price))
		}
	})

	t.Run("missing package", func(t *testing.T) {
		_, err := s.GetPackage(ctx, "nope")
		assert.ErrorIs(t, err, ErrPackageNotFound)
	})

	t.Run("crush type by name ignores case", func(t *testing.T) {
		ct, err := s.GetCrushType(ctx, "ligero")
		require.NoError(t, err)
		assert.Equal(t, "crh2", ct.ID)
	})

	t.Run("flavors by ids skips unknown", func(t *testing.T) {
		flavors, err := s.GetFlavorsByIDs(ctx, []string{"flv2", "flv5", "ghost"})
		require.NoError(t, err)
		assert.Len(t, flavors, 2)
	})
}

func TestPostgresOrderStorage_Create(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	s := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	t.Run("successful create writes outbox", func(t *testing.T) {
		order := newTestOrder(t)
		created, replayed, err := s.Create(ctx, order, &models.OrderCreatedEvent{Topic: "orders.created", Number: order.Number})
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.True(t, created.Amount.Equal(decimal.NewFromInt(15)))

		var pending int
		err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE key = $1 AND sent_at IS NULL`, created.ID.String()).Scan(&pending)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)
	})

	t.Run("same idempotency key replays", func(t *testing.T) {
		order := newTestOrder(t)
		order.IdempotencyKey = uuid.NewString()
		first, _, err := s.Create(ctx, order, nil)
		require.NoError(t, err)

		retry := newTestOrder(t)
		retry.IdempotencyKey = order.IdempotencyKey
		second, replayed, err := s.Create(ctx, retry, nil)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("duplicate number", func(t *testing.T) {
		order := newTestOrder(t)
		_, _, err := s.Create(ctx, order, nil)
		require.NoError(t, err)

		dup := newTestOrder(t)
		dup.Number = order.Number
		_, _, err = s.Create(ctx, dup, nil)
		assert.ErrorIs(t, err, ErrOrderNumberTaken)
	})

	t.Run("lookup and daily listing", func(t *testing.T) {
		order := newTestOrder(t)
		created, _, err := s.Create(ctx, order, nil)
		require.NoError(t, err)

		got, err := s.GetByNumber(ctx, order.Number)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, []string{"Limón", "Red Bull"}, got.Flavors)

		orders, err := s.GetByDate(ctx, created.OrderDate)
		require.NoError(t, err)
		assert.NotEmpty(t, orders)
	})
}

func TestPostgresBlobStorage(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	s := NewPostgresBlobStorage(pool)
	ctx := context.Background()
	name := uuid.NewString() + ".png"

	require.NoError(t, s.Put(ctx, &Blob{Name: name, ContentType: "image/png", Data: []byte{1, 2, 3}}))
	got, err := s.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, []byte{1, 2, 3}, got.Data)

	_, err = s.Get(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestPostgresOutboxStorage(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	orders := NewPostgresOrderStorage(pool)
	outbox := NewPostgresOutboxStorage(pool)
	ctx := context.Background()

	_, _, err := orders.Create(ctx, newTestOrder(t), &models.OrderCreatedEvent{Topic: "orders.created"})
	require.NoError(t, err)

	pending, err := outbox.FetchPending(ctx, 100)
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	for _, r := range pending {
		require.NoError(t, outbox.MarkSent(ctx, r.ID))
	}

	pending, err = outbox.FetchPending(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
