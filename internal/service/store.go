package service

import (
	"context"

	"leafloop/internal/models"
)

// Store runs fn inside a single unit of work. If fn returns an error every
// change made through the repositories is discarded.
type Store interface {
	WithTx(ctx context.Context, fn func(Repositories) error) error
}

type Repositories interface {
	Users() UserRepository
	Items() ItemRepository
	Transactions() TransactionRepository
	Ratings() RatingRepository
}

// Repository lookups return an error wrapping ErrNotFound for missing rows and
// ErrConflict for unique constraint violations.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddEcoScore(ctx context.Context, id int64, delta int) error
	TopByEcoScore(ctx context.Context, limit int) ([]models.User, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	// GetForUpdate locks the item row until the unit of work ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	// GetForUpdate locks the transaction row until the unit of work ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Transaction, error)
	HasPending(ctx context.Context, itemID, buyerID int64) (bool, error)
	// HasOpen reports whether a Pending or InProgress transaction references the item.
	HasOpen(ctx context.Context, itemID int64) (bool, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
}

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListByRatee(ctx context.Context, userID int64) ([]models.Rating, error)
	Summary(ctx context.Context, userID int64) (models.RatingSummary, error)
}
