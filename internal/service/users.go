package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leafloop/internal/models"
	"leafloop/internal/utils"

	"go.uber.org/zap"
)

const (
	maxLeaderboard = 100
	// bcrypt ignores input past this many bytes and rejects it outright.
	maxPasswordBytes = 72
)

type UserService struct {
	store  Store
	logger *zap.Logger
}

func NewUserService(store Store, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidOperation, maxPasswordBytes)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(r Repositories) error {
		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, ErrConflict) {
				return fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("register user failed", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords both
// return ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(r Repositories) error {
		var err error
		user, err = r.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(r Repositories) error {
		var err error
		user, err = r.Users().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		return nil
	})
	return user, err
}

func (s *UserService) Profile(ctx context.Context, id int64) (*models.UserProfile, error) {
	var profile *models.UserProfile
	err := s.store.WithTx(ctx, func(r Repositories) error {
		user, err := r.Users().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		summary, err := r.Ratings().Summary(ctx, id)
		if err != nil {
			return err
		}
		profile = &models.UserProfile{
			ID:            user.ID,
			Name:          user.Name,
			EcoScore:      user.EcoScore,
			RatingCount:   summary.Count,
			AverageRating: summary.Average,
		}
		return nil
	})
	return profile, err
}

func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxLeaderboard {
		limit = maxLeaderboard
	}

	entries := make([]models.LeaderboardEntry, 0, limit)
	err := s.store.WithTx(ctx, func(r Repositories) error {
		users, err := r.Users().TopByEcoScore(ctx, limit)
		if err != nil {
			return err
		}
		for _, u := range users {
			entries = append(entries, models.LeaderboardEntry{UserID: u.ID, Name: u.Name, EcoScore: u.EcoScore})
		}
		return nil
	})
	return entries, err
}
