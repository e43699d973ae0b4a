package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/handler/http/response"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/jwt"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionResolver looks up the live session behind a token
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (auth.Session, error)
}

// AuthRequired expects jwtauth.Verifier to run first. It rejects revoked
// tokens and tokens whose session is gone, and stores the session in the
// request context.
func AuthRequired(jwtService jwt.Service, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			sessionID, err := jwtService.SessionIDFromClaims(claims)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			session, err := sessions.Resolve(r.Context(), sessionID)
			if err != nil {
				slog.Debug("Session rejected", "error", err)
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		}
		return http.HandlerFunc(hfn)
	}
}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session stored by AuthRequired
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	return session, ok
}
