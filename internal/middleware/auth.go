package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"leafloop/internal/models"
	"leafloop/internal/session"
	"leafloop/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator issues and verifies HS256 tokens. Every token carries a
// session id that must still be active in the session store.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	sessions session.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, sessions session.Store, logger *zap.Logger) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, sessions: sessions, logger: logger, now: time.Now}, nil
}

func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// GenerateToken creates a new JWT token for a user and opens its session.
func (a *Authenticator) GenerateToken(ctx context.Context, userID int64, role string) (string, error) {
	now := a.now()
	sessionID := uuid.NewString()
	claims := models.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := a.sessions.Track(ctx, sessionID, userID, a.ttl); err != nil {
		return "", err
	}
	return signed, nil
}

// Revoke ends the session behind claims.
func (a *Authenticator) Revoke(ctx context.Context, claims *models.Claims) error {
	return a.sessions.Revoke(ctx, claims.ID)
}

// Parse validates tokenString and returns its claims.
func (a *Authenticator) Parse(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token claims in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := a.Parse(bearerToken[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		active, err := a.sessions.Active(r.Context(), claims.ID)
		if err != nil {
			a.logger.Error("session lookup failed", zap.String("session_id", claims.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !active {
			writeError(w, http.StatusUnauthorized, "Session expired or revoked")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*models.Claims)
	return claims, ok && claims != nil
}

// AdminOnly middleware restricts access to admin users
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if claims.Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OwnerOrAdmin middleware allows access to the user named by the {id} path
// parameter or to an admin.
func OwnerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if claims.Role == models.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := utils.GetUserIDFromPath(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		if userID != claims.UserID {
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
