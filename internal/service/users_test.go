package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"leafloop/internal/memstore"
	"leafloop/internal/models"
	"leafloop/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := service.NewUserService(memstore.New(), nil)

	user, err := svc.Register(ctx, models.CreateUserRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	_, err = svc.Register(ctx, models.CreateUserRequest{Name: "Other", Email: "ada@example.com", Password: "another-pass"})
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Register(ctx, models.CreateUserRequest{Name: "Long", Email: "long@example.com", Password: strings.Repeat("p", 73)})
	require.ErrorIs(t, err, service.ErrInvalidOperation)

	// 37 two-byte runes: 74 bytes, over bcrypt's limit despite the short rune count.
	_, err = svc.Register(ctx, models.CreateUserRequest{Name: "Wide", Email: "wide@example.com", Password: strings.Repeat("é", 37)})
	require.ErrorIs(t, err, service.ErrInvalidOperation)

	_, err = svc.Register(ctx, models.CreateUserRequest{Name: "Edge", Email: "edge@example.com", Password: strings.Repeat("p", 72)})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ADA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestProfileAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := seedMarket(t)
	svc := service.NewUserService(store, nil)

	board, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, buyerID, board[0].UserID)
	assert.Equal(t, 20, board[0].EcoScore)
	assert.Equal(t, sellerID, board[1].UserID)

	profile, err := svc.Profile(ctx, sellerID)
	require.NoError(t, err)
	assert.Equal(t, "Seller", profile.Name)
	assert.Equal(t, 10, profile.EcoScore)
	assert.Zero(t, profile.RatingCount)

	_, err = svc.Profile(ctx, 999)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestLeaderboardLimits(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	for i := 1; i <= 12; i++ {
		err := store.WithTx(ctx, func(r service.Repositories) error {
			return r.Users().Create(ctx, &models.User{
				Name:     fmt.Sprintf("user%d", i),
				Email:    fmt.Sprintf("user%d@example.com", i),
				EcoScore: i,
			})
		})
		require.NoError(t, err)
	}
	svc := service.NewUserService(store, nil)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when zero", 0, 10},
		{"default when negative", -3, 10},
		{"explicit", 5, 5},
		{"capped above maximum", 500, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := svc.Leaderboard(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, board, tt.want)
			assert.Equal(t, 12, board[0].EcoScore)
		})
	}
}
