package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	EcoScore     int       `json:"eco_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	EcoScore      int     `json:"eco_score"`
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
}

type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	EcoScore int    `json:"eco_score"`
}
