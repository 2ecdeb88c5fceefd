package models

import "github.com/golang-jwt/jwt/v5"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	UserID    int64  `json:"user_id"`
	ExpiresIn int64  `json:"expires_in"`
}

// Claims defines the JWT claims structure. RegisteredClaims.ID carries the
// session id checked against the session store on every request.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
