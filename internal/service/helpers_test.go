package service_test

import (
	"context"
	"testing"
	"time"

	"leafloop/internal/memstore"
	"leafloop/internal/models"
	"leafloop/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	buyerID    int64 = 5
	sellerID   int64 = 6
	strangerID int64 = 7
	itemID     int64 = 10
)

// seedMarket creates a buyer, a seller holding one available item, and an
// unrelated user. Eco-scores start at 20 for the buyer and 10 for the seller.
func seedMarket(t *testing.T) *memstore.Store {
	t.Helper()

	store := memstore.New()
	ctx := context.Background()
	err := store.WithTx(ctx, func(r service.Repositories) error {
		for _, u := range []models.User{
			{ID: buyerID, Name: "Buyer", Email: "buyer@example.com", EcoScore: 20},
			{ID: sellerID, Name: "Seller", Email: "seller@example.com", EcoScore: 10},
			{ID: strangerID, Name: "Stranger", Email: "stranger@example.com"},
		} {
			u := u
			if err := r.Users().Create(ctx, &u); err != nil {
				return err
			}
		}
		return r.Items().Create(ctx, &models.Item{
			ID:           itemID,
			OwnerID:      sellerID,
			Title:        "Bike",
			Category:     "sports",
			ExchangeType: models.TypeSale,
			Price:        decimal.NewFromInt(40),
			Available:    true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
	})
	require.NoError(t, err)
	return store
}

// seedTransaction stores a transaction over itemID in the given status and
// takes the item off the market.
func seedTransaction(t *testing.T, store *memstore.Store, status models.TransactionStatus) int64 {
	t.Helper()

	ctx := context.Background()
	tx := &models.Transaction{
		ItemID:       itemID,
		BuyerID:      buyerID,
		SellerID:     sellerID,
		Type:         models.TypeSale,
		Status:       status,
		StartDate:    time.Now(),
		LastModified: time.Now(),
	}
	err := store.WithTx(ctx, func(r service.Repositories) error {
		if err := r.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		item, err := r.Items().GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		item.Available = false
		return r.Items().Update(ctx, item)
	})
	require.NoError(t, err)
	return tx.ID
}

func loadUser(t *testing.T, store *memstore.Store, id int64) *models.User {
	t.Helper()

	var user *models.User
	require.NoError(t, store.WithTx(context.Background(), func(r service.Repositories) error {
		var err error
		user, err = r.Users().GetByID(context.Background(), id)
		return err
	}))
	return user
}

func loadItem(t *testing.T, store *memstore.Store, id int64) *models.Item {
	t.Helper()

	var item *models.Item
	require.NoError(t, store.WithTx(context.Background(), func(r service.Repositories) error {
		var err error
		item, err = r.Items().GetByID(context.Background(), id)
		return err
	}))
	return item
}
