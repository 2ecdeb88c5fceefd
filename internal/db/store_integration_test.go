//go:build integration

package db

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"leafloop/internal/models"
	"leafloop/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("leafloop"),
		tcpostgres.WithUsername("leafloop"),
		tcpostgres.WithPassword("leafloop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := InitDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, db.Ping(), "pool must survive the migration connection closing")
}

func TestTransactionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	users := service.NewUserService(store, nil)
	items := service.NewItemService(store, nil)
	txs := service.NewTransactionService(store, nil, service.DefaultEcoRewards)
	ratings := service.NewRatingService(store, nil)

	seller, err := users.Register(ctx, models.CreateUserRequest{Name: "Seller", Email: "Seller@Example.com", Password: "password123"})
	require.NoError(t, err)
	buyer, err := users.Register(ctx, models.CreateUserRequest{Name: "Buyer", Email: "buyer@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = users.Register(ctx, models.CreateUserRequest{Name: "Dup", Email: "seller@example.com", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrConflict)

	item, err := items.Create(ctx, seller.ID, models.ItemRequest{
		Title:        "Bike",
		Category:     "sports",
		ExchangeType: models.TypeSale,
		Price:        decimal.RequireFromString("40.50"),
	})
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("40.50")))

	listed, err := items.List(ctx, models.ItemFilter{Category: "SPORTS", AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	tx, err := txs.Initiate(ctx, item.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, tx.Status)
	assert.Nil(t, tx.EndDate)

	_, err = txs.Initiate(ctx, item.ID, buyer.ID)
	assert.ErrorIs(t, err, service.ErrInvalidOperation)

	_, err = txs.UpdateStatus(ctx, tx.ID, seller.ID, models.StatusInProgress)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []int64{buyer.ID, seller.ID} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := txs.Confirm(ctx, tx.ID, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	done, err := txs.Get(ctx, tx.ID, service.Actor{UserID: buyer.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.EndDate)

	sellerAfter, err := users.Get(ctx, seller.ID)
	require.NoError(t, err)
	buyerAfter, err := users.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, sellerAfter.EcoScore)
	assert.Equal(t, 3, buyerAfter.EcoScore)

	itemAfter, err := items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, itemAfter.Available)

	_, err = ratings.Rate(ctx, tx.ID, buyer.ID, models.RatingRequest{Score: 4, Comment: "smooth"})
	require.NoError(t, err)
	_, err = ratings.Rate(ctx, tx.ID, buyer.ID, models.RatingRequest{Score: 5})
	assert.ErrorIs(t, err, service.ErrConflict)

	profile, err := users.Profile(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.RatingCount)
	assert.InDelta(t, 4.0, profile.AverageRating, 0.001)

	board, err := users.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, seller.ID, board[0].UserID)

	sellerTxs, err := txs.List(ctx, models.TransactionFilter{UserID: seller.ID, Role: "seller"})
	require.NoError(t, err)
	assert.Len(t, sellerTxs, 1)
	buyerAsSeller, err := txs.List(ctx, models.TransactionFilter{UserID: buyer.ID, Role: "seller"})
	require.NoError(t, err)
	assert.Empty(t, buyerAsSeller)
}

func TestCancelRestoresAvailability(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	users := service.NewUserService(store, nil)
	items := service.NewItemService(store, nil)
	txs := service.NewTransactionService(store, nil, service.DefaultEcoRewards)

	seller, err := users.Register(ctx, models.CreateUserRequest{Name: "Seller", Email: "s@example.com", Password: "password123"})
	require.NoError(t, err)
	buyer, err := users.Register(ctx, models.CreateUserRequest{Name: "Buyer", Email: "b@example.com", Password: "password123"})
	require.NoError(t, err)
	item, err := items.Create(ctx, seller.ID, models.ItemRequest{Title: "Jacket", Category: "clothes", ExchangeType: models.TypeDonation})
	require.NoError(t, err)

	tx, err := txs.Initiate(ctx, item.ID, buyer.ID)
	require.NoError(t, err)

	_, err = items.SetAvailability(ctx, item.ID, seller.ID, true)
	assert.ErrorIs(t, err, service.ErrInvalidOperation)

	cancelled, err := txs.UpdateStatus(ctx, tx.ID, buyer.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.NotNil(t, cancelled.EndDate)

	itemAfter, err := items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, itemAfter.Available)

	_, err = txs.Get(ctx, 9999, service.Actor{Admin: true})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
