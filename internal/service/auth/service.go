package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/jwt"
)

// SessionDropper forgets per-session state held elsewhere, such as
// unsaved attendance sheets.
type SessionDropper interface {
	DropSession(sessionID string)
}

type AuthServiceImpl struct {
	users       auth.UserGateway
	sessions    auth.SessionStore
	jwtService  jwt.Service
	dropper     SessionDropper
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewAuthService(
	users auth.UserGateway,
	sessions auth.SessionStore,
	jwtService jwt.Service,
	dropper SessionDropper,
	sessionTTL time.Duration,
	rememberTTL time.Duration,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:       users,
		sessions:    sessions,
		jwtService:  jwtService,
		dropper:     dropper,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

var _ auth.AuthService = (*AuthServiceImpl)(nil)

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	gatewayToken, err := a.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Info("Login rejected by gateway", "email", req.Email)
			return auth.TokenResponse{}, err
		}
		slog.Error("Login request failed", "email", req.Email, "error", err)
		return auth.TokenResponse{}, fmt.Errorf("failed to log in: %w", err)
	}

	ttl := a.sessionTTL
	if req.RememberMe {
		ttl = a.rememberTTL
	}
	now := a.now()
	session := auth.Session{
		ID:           uuid.NewString(),
		Email:        req.Email,
		GatewayToken: gatewayToken,
		Remember:     req.RememberMe,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	if err := a.sessions.Save(ctx, session); err != nil {
		slog.Error("Failed to store session", "email", req.Email, "error", err)
		return auth.TokenResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	token, exp, err := a.jwtService.GenerateAccessToken(session.ID, session.Email, session.ExpiresAt)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: exp - now.Unix(),
		SessionExpiresAt:     session.ExpiresAt.Unix(),
	}, nil
}

// Resolve implements auth.AuthService.
func (a *AuthServiceImpl) Resolve(ctx context.Context, sessionID string) (auth.Session, error) {
	session, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		return auth.Session{}, err
	}
	if session.IsExpired(a.now()) {
		if err := a.sessions.Delete(ctx, sessionID); err != nil {
			slog.Warn("Failed to delete expired session", "error", err)
		}
		return auth.Session{}, auth.ErrSessionExpired
	}
	return session, nil
}

// Logout implements auth.AuthService. The access token is revoked even when
// the session is already gone.
func (a *AuthServiceImpl) Logout(ctx context.Context, sessionID, accessToken string) error {
	expiresAt := a.now().Add(a.rememberTTL)
	if session, err := a.sessions.Get(ctx, sessionID); err == nil {
		expiresAt = session.ExpiresAt
	}
	if accessToken != "" {
		a.jwtService.RevokeToken(accessToken, expiresAt)
	}

	if err := a.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		slog.Error("Failed to delete session", "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if a.dropper != nil {
		a.dropper.DropSession(sessionID)
	}
	return nil
}

// PurgeExpired implements auth.AuthService.
func (a *AuthServiceImpl) PurgeExpired(ctx context.Context) (int, error) {
	now := a.now()
	purged, err := a.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	a.jwtService.PurgeRevoked(now)
	return purged, nil
}
