package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leafloop/internal/models"

	"go.uber.org/zap"
)

type RatingService struct {
	store  Store
	logger *zap.Logger
}

func NewRatingService(store Store, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{store: store, logger: logger}
}

// Rate lets a party of a completed transaction rate the counterpart once.
func (s *RatingService) Rate(ctx context.Context, transactionID, raterID int64, req models.RatingRequest) (*models.Rating, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", ErrInvalidOperation)
	}

	var rating *models.Rating
	err := s.store.WithTx(ctx, func(r Repositories) error {
		tx, err := r.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", transactionID, err)
		}
		if !tx.IsParty(raterID) {
			return fmt.Errorf("%w: only the buyer or seller may rate transaction %d", ErrForbidden, transactionID)
		}
		if tx.Status != models.StatusCompleted {
			return fmt.Errorf("%w: transaction %d is not completed", ErrInvalidOperation, transactionID)
		}

		ratee := tx.SellerID
		if raterID == tx.SellerID {
			ratee = tx.BuyerID
		}

		rating = &models.Rating{
			TransactionID: transactionID,
			RaterID:       raterID,
			RateeID:       ratee,
			Score:         req.Score,
			Comment:       strings.TrimSpace(req.Comment),
			CreatedAt:     time.Now().UTC(),
		}
		if err := r.Ratings().Create(ctx, rating); err != nil {
			if errors.Is(err, ErrConflict) {
				return fmt.Errorf("%w: transaction %d already rated", ErrConflict, transactionID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("rate transaction failed",
			zap.Int64("transaction_id", transactionID), zap.Int64("rater_id", raterID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("transaction rated",
		zap.Int64("transaction_id", transactionID), zap.Int64("ratee_id", rating.RateeID), zap.Int("score", rating.Score))
	return rating, nil
}

func (s *RatingService) ListForUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.store.WithTx(ctx, func(r Repositories) error {
		if _, err := r.Users().GetByID(ctx, userID); err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		var err error
		ratings, err = r.Ratings().ListByRatee(ctx, userID)
		return err
	})
	return ratings, err
}
