package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, sessionID, accessToken string) error
	Resolve(ctx context.Context, sessionID string) (Session, error)
	PurgeExpired(ctx context.Context) (int, error)
}
