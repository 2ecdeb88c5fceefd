package service

import (
	"context"
	"fmt"
	"time"

	"leafloop/internal/models"

	"go.uber.org/zap"
)

// EcoRewards are the eco-score increments applied to each party when a
// transaction completes.
type EcoRewards struct {
	Seller int
	Buyer  int
}

var DefaultEcoRewards = EcoRewards{Seller: 5, Buyer: 3}

// Actor identifies the authenticated user performing a request.
type Actor struct {
	UserID int64
	Admin  bool
}

type TransactionService struct {
	store   Store
	logger  *zap.Logger
	rewards EcoRewards
	now     func() time.Time
}

func NewTransactionService(store Store, logger *zap.Logger, rewards EcoRewards) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		store:   store,
		logger:  logger,
		rewards: rewards,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Initiate opens a Pending transaction between buyerID and the owner of
// itemID and takes the item off the market.
func (s *TransactionService) Initiate(ctx context.Context, itemID, buyerID int64) (*models.Transaction, error) {
	var created *models.Transaction

	err := s.store.WithTx(ctx, func(r Repositories) error {
		if _, err := r.Users().GetByID(ctx, buyerID); err != nil {
			return fmt.Errorf("buyer %d: %w", buyerID, err)
		}

		item, err := r.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return fmt.Errorf("item %d: %w", itemID, err)
		}

		if item.OwnerID == buyerID {
			return fmt.Errorf("%w: cannot start a transaction on your own item", ErrInvalidOperation)
		}

		pending, err := r.Transactions().HasPending(ctx, itemID, buyerID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("%w: a pending transaction for item %d already exists", ErrInvalidOperation, itemID)
		}

		if !item.Available {
			return fmt.Errorf("%w: item %d is not available", ErrInvalidOperation, itemID)
		}

		now := s.now()
		tx := &models.Transaction{
			ItemID:       item.ID,
			BuyerID:      buyerID,
			SellerID:     item.OwnerID,
			Type:         item.ExchangeType,
			Status:       models.StatusPending,
			StartDate:    now,
			LastModified: now,
		}
		if err := r.Transactions().Create(ctx, tx); err != nil {
			return err
		}

		item.Available = false
		item.UpdatedAt = now
		if err := r.Items().Update(ctx, item); err != nil {
			return err
		}

		created = tx
		return nil
	})
	if err != nil {
		s.logger.Warn("initiate transaction failed",
			zap.Int64("item_id", itemID), zap.Int64("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("transaction initiated",
		zap.Int64("transaction_id", created.ID),
		zap.Int64("item_id", itemID),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("seller_id", created.SellerID))
	return created, nil
}

// UpdateStatus applies a party-requested status change. Completion is not
// accepted here; it happens when both parties confirm.
func (s *TransactionService) UpdateStatus(ctx context.Context, id, actorID int64, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, status)
	}

	var updated *models.Transaction
	var from models.TransactionStatus

	err := s.store.WithTx(ctx, func(r Repositories) error {
		tx, err := r.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", id, err)
		}
		if !tx.IsParty(actorID) {
			return fmt.Errorf("%w: only the buyer or seller may change transaction %d", ErrForbidden, id)
		}
		if status == models.StatusCompleted {
			return fmt.Errorf("%w: completion requires confirmation from both parties", ErrInvalidOperation)
		}
		if !CanTransition(tx.Status, status) {
			return fmt.Errorf("%w: cannot move transaction %d from %s to %s", ErrInvalidOperation, id, tx.Status, status)
		}

		from = tx.Status
		now := s.now()
		tx.Status = status
		tx.LastModified = now
		if status.IsTerminal() {
			tx.EndDate = &now
		}
		if err := r.Transactions().Update(ctx, tx); err != nil {
			return err
		}

		if status == models.StatusCancelled {
			item, err := r.Items().GetForUpdate(ctx, tx.ItemID)
			if err != nil {
				return fmt.Errorf("item %d: %w", tx.ItemID, err)
			}
			item.Available = true
			item.UpdatedAt = now
			if err := r.Items().Update(ctx, item); err != nil {
				return err
			}
		}

		updated = tx
		return nil
	})
	if err != nil {
		s.logger.Warn("update transaction status failed",
			zap.Int64("transaction_id", id), zap.Int64("actor_id", actorID),
			zap.String("status", string(status)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("transaction status changed",
		zap.Int64("transaction_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	return updated, nil
}

// Confirm records the actor's completion confirmation. The second
// confirmation completes the transaction and awards eco-score to both parties.
func (s *TransactionService) Confirm(ctx context.Context, id, actorID int64) (*models.Transaction, error) {
	var updated *models.Transaction
	var completed bool

	err := s.store.WithTx(ctx, func(r Repositories) error {
		tx, err := r.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", id, err)
		}
		if !tx.IsParty(actorID) {
			return fmt.Errorf("%w: only the buyer or seller may confirm transaction %d", ErrForbidden, id)
		}
		if tx.Status != models.StatusInProgress {
			return fmt.Errorf("%w: transaction %d is %s, confirmation requires %s",
				ErrInvalidOperation, id, tx.Status, models.StatusInProgress)
		}

		switch actorID {
		case tx.BuyerID:
			if tx.BuyerConfirmed {
				return fmt.Errorf("%w: buyer already confirmed transaction %d", ErrInvalidOperation, id)
			}
			tx.BuyerConfirmed = true
		case tx.SellerID:
			if tx.SellerConfirmed {
				return fmt.Errorf("%w: seller already confirmed transaction %d", ErrInvalidOperation, id)
			}
			tx.SellerConfirmed = true
		}

		now := s.now()
		tx.LastModified = now
		completed = tx.BuyerConfirmed && tx.SellerConfirmed
		if completed {
			tx.Status = models.StatusCompleted
			tx.EndDate = &now
		}
		if err := r.Transactions().Update(ctx, tx); err != nil {
			return err
		}

		if completed {
			if err := s.settle(ctx, r, tx, now); err != nil {
				return err
			}
		}

		updated = tx
		return nil
	})
	if err != nil {
		s.logger.Warn("confirm transaction failed",
			zap.Int64("transaction_id", id), zap.Int64("actor_id", actorID), zap.Error(err))
		return nil, err
	}

	if completed {
		s.logger.Info("transaction completed",
			zap.Int64("transaction_id", id),
			zap.Int64("seller_id", updated.SellerID), zap.Int("seller_reward", s.rewards.Seller),
			zap.Int64("buyer_id", updated.BuyerID), zap.Int("buyer_reward", s.rewards.Buyer))
	} else {
		s.logger.Info("transaction confirmed", zap.Int64("transaction_id", id), zap.Int64("actor_id", actorID))
	}
	return updated, nil
}

// settle keeps the item off the market and applies the eco-score rewards.
func (s *TransactionService) settle(ctx context.Context, r Repositories, tx *models.Transaction, now time.Time) error {
	item, err := r.Items().GetForUpdate(ctx, tx.ItemID)
	if err != nil {
		return fmt.Errorf("item %d: %w", tx.ItemID, err)
	}
	if item.Available {
		item.Available = false
		item.UpdatedAt = now
		if err := r.Items().Update(ctx, item); err != nil {
			return err
		}
	}

	if err := r.Users().AddEcoScore(ctx, tx.SellerID, s.rewards.Seller); err != nil {
		return fmt.Errorf("seller %d eco-score: %w", tx.SellerID, err)
	}
	if err := r.Users().AddEcoScore(ctx, tx.BuyerID, s.rewards.Buyer); err != nil {
		return fmt.Errorf("buyer %d eco-score: %w", tx.BuyerID, err)
	}
	return nil
}

// Get returns a transaction visible to its parties and to admins.
func (s *TransactionService) Get(ctx context.Context, id int64, actor Actor) (*models.Transaction, error) {
	var found *models.Transaction
	err := s.store.WithTx(ctx, func(r Repositories) error {
		tx, err := r.Transactions().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", id, err)
		}
		if !actor.Admin && !tx.IsParty(actor.UserID) {
			return fmt.Errorf("%w: transaction %d belongs to other users", ErrForbidden, id)
		}
		found = tx
		return nil
	})
	return found, err
}

// List returns transactions matching filter, newest first. A zero UserID
// lists every user's transactions.
func (s *TransactionService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, filter.Status)
	}
	switch filter.Role {
	case "", "buyer", "seller":
	default:
		return nil, fmt.Errorf("%w: role must be buyer or seller", ErrInvalidOperation)
	}

	var txs []models.Transaction
	err := s.store.WithTx(ctx, func(r Repositories) error {
		var err error
		txs, err = r.Transactions().List(ctx, filter)
		return err
	})
	return txs, err
}
