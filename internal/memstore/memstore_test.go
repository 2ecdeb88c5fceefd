package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"leafloop/internal/models"
	"leafloop/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(r service.Repositories) error {
		require.NoError(t, r.Users().Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithTx(ctx, func(r service.Repositories) error {
		_, err := r.Users().GetByEmail(ctx, "ada@example.com")
		return err
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestWithTxCommitsAndCopiesValues(t *testing.T) {
	store := New()
	ctx := context.Background()

	var id int64
	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		item := &models.Item{OwnerID: 1, Title: "Lamp", Available: true}
		if err := r.Items().Create(ctx, item); err != nil {
			return err
		}
		id = item.ID
		return nil
	}))
	assert.Equal(t, int64(1), id)

	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		item, err := r.Items().GetByID(ctx, id)
		require.NoError(t, err)
		item.Available = false // not persisted without Update
		return nil
	}))

	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		item, err := r.Items().GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, item.Available)
		return nil
	}))
}

func TestAssignIDKeepsSeededIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		require.NoError(t, r.Users().Create(ctx, &models.User{ID: 5, Email: "a@example.com"}))
		u := &models.User{Email: "b@example.com"}
		require.NoError(t, r.Users().Create(ctx, u))
		assert.Equal(t, int64(6), u.ID)

		err := r.Users().Create(ctx, &models.User{Email: "A@example.com"})
		assert.ErrorIs(t, err, service.ErrConflict)
		return nil
	}))
}

func TestRatingSummary(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		require.NoError(t, r.Ratings().Create(ctx, &models.Rating{TransactionID: 1, RaterID: 1, RateeID: 2, Score: 5}))
		require.NoError(t, r.Ratings().Create(ctx, &models.Rating{TransactionID: 2, RaterID: 3, RateeID: 2, Score: 2}))

		err := r.Ratings().Create(ctx, &models.Rating{TransactionID: 1, RaterID: 1, RateeID: 2, Score: 1})
		assert.ErrorIs(t, err, service.ErrConflict)

		summary, err := r.Ratings().Summary(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Count)
		assert.InDelta(t, 3.5, summary.Average, 0.001)
		return nil
	}))
}

func TestTransactionListNewestStartFirst(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.WithTx(ctx, func(r service.Repositories) error {
		for _, tx := range []models.Transaction{
			{ID: 1, BuyerID: 1, SellerID: 2, StartDate: base.Add(2 * time.Hour)},
			{ID: 2, BuyerID: 1, SellerID: 2, StartDate: base},
			{ID: 3, BuyerID: 1, SellerID: 2, StartDate: base.Add(time.Hour)},
			{ID: 4, BuyerID: 1, SellerID: 2, StartDate: base},
		} {
			tx := tx
			require.NoError(t, r.Transactions().Create(ctx, &tx))
		}

		txs, err := r.Transactions().List(ctx, models.TransactionFilter{UserID: 1})
		require.NoError(t, err)
		ids := make([]int64, 0, len(txs))
		for _, tx := range txs {
			ids = append(ids, tx.ID)
		}
		assert.Equal(t, []int64{1, 3, 4, 2}, ids)
		return nil
	}))
}
