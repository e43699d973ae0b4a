package auth

import (
	"context"
	"time"
)

// SessionStore persists sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Get returns ErrSessionNotFound when no session has the id
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before now and returns how many
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// UserGateway verifies credentials against the remote user store and
// returns the gateway token.
type UserGateway interface {
	Login(ctx context.Context, email, password string) (string, error)
}
