// Package session tracks issued login sessions so tokens can be revoked
// before they expire.
package session

import (
	"context"
	"time"
)

type Store interface {
	// Track records sessionID as active for userID until ttl elapses.
	Track(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}
