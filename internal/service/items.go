package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leafloop/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// maxPrice is the first value that no longer fits NUMERIC(12,2).
var maxPrice = decimal.New(1, 10)

type ItemService struct {
	store  Store
	logger *zap.Logger
}

func NewItemService(store Store, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{store: store, logger: logger}
}

func validateListing(req models.ItemRequest) error {
	if !req.ExchangeType.Valid() {
		return fmt.Errorf("%w: unknown exchange type %q", ErrInvalidOperation, req.ExchangeType)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidOperation)
	}
	if req.Price.Round(2).GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price must be below %s", ErrInvalidOperation, maxPrice)
	}
	if req.ExchangeType != models.TypeSale && !req.Price.IsZero() {
		return fmt.Errorf("%w: only Sale items can have a price", ErrInvalidOperation)
	}
	return nil
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, req models.ItemRequest) (*models.Item, error) {
	if err := validateListing(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.Item{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     strings.TrimSpace(req.Category),
		Condition:    req.Condition,
		ExchangeType: req.ExchangeType,
		Price:        req.Price.Round(2),
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.WithTx(ctx, func(r Repositories) error {
		if _, err := r.Users().GetByID(ctx, ownerID); err != nil {
			return fmt.Errorf("owner %d: %w", ownerID, err)
		}
		return r.Items().Create(ctx, item)
	})
	if err != nil {
		s.logger.Warn("create item failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("item listed", zap.Int64("item_id", item.ID), zap.Int64("owner_id", ownerID))
	return item, nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	var item *models.Item
	err := s.store.WithTx(ctx, func(r Repositories) error {
		var err error
		item, err = r.Items().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		return nil
	})
	return item, err
}

func (s *ItemService) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var items []models.Item
	err := s.store.WithTx(ctx, func(r Repositories) error {
		var err error
		items, err = r.Items().List(ctx, filter)
		return err
	})
	return items, err
}

// Update edits the listing. Items taken off the market by a transaction
// cannot be edited.
func (s *ItemService) Update(ctx context.Context, id, actorID int64, req models.ItemRequest) (*models.Item, error) {
	if err := validateListing(req); err != nil {
		return nil, err
	}

	var updated *models.Item
	err := s.store.WithTx(ctx, func(r Repositories) error {
		item, err := r.Items().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		if item.OwnerID != actorID {
			return fmt.Errorf("%w: only the owner may edit item %d", ErrForbidden, id)
		}
		if !item.Available {
			return fmt.Errorf("%w: item %d is not available for editing", ErrInvalidOperation, id)
		}

		item.Title = strings.TrimSpace(req.Title)
		item.Description = req.Description
		item.Category = strings.TrimSpace(req.Category)
		item.Condition = req.Condition
		item.ExchangeType = req.ExchangeType
		item.Price = req.Price.Round(2)
		item.UpdatedAt = time.Now().UTC()
		if err := r.Items().Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetAvailability lets the owner withdraw or relist an item that no open
// transaction references.
func (s *ItemService) SetAvailability(ctx context.Context, id, actorID int64, available bool) (*models.Item, error) {
	var updated *models.Item
	err := s.store.WithTx(ctx, func(r Repositories) error {
		item, err := r.Items().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		if item.OwnerID != actorID {
			return fmt.Errorf("%w: only the owner may change item %d", ErrForbidden, id)
		}

		open, err := r.Transactions().HasOpen(ctx, id)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("%w: item %d has an open transaction", ErrInvalidOperation, id)
		}

		item.Available = available
		item.UpdatedAt = time.Now().UTC()
		if err := r.Items().Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item availability changed", zap.Int64("item_id", id), zap.Bool("available", available))
	return updated, nil
}
