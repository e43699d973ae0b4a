package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

var ErrMissingSessionClaim = errors.New("token has no session_id claim")

type Service interface {
	// GenerateAccessToken signs a token bound to a session. It expires with the session.
	GenerateAccessToken(sessionID string, email string, expiresAt time.Time) (token string, exp int64, err error)
	GenerateSSEToken(sessionID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (sessionID string, err error)
	SessionIDFromClaims(claims map[string]interface{}) (string, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
	// PurgeRevoked forgets revoked tokens that have expired anyway
	PurgeRevoked(now time.Time) int
}

type JWTService struct {
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
	}
}

func (j *JWTService) GenerateAccessToken(sessionID string, email string, expiresAt time.Time) (token string, exp int64, err error) {
	exp = expiresAt.Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"session_id": sessionID,
		"email":      email,
		"type":       TokenTypeAccess,
		"iat":        time.Now().Unix(),
		"exp":        exp,
	})
	return tokenString, exp, err
}

// SessionIDFromClaims reads the session id of a verified access token.
func (j *JWTService) SessionIDFromClaims(claims map[string]interface{}) (string, error) {
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeAccess {
		return "", jwt.ErrInvalidJWT()
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", ErrMissingSessionClaim
	}
	return sessionID, nil
}

func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = expiresAt.Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func (j *JWTService) PurgeRevoked(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	purged := 0
	for token, exp := range j.revokedTokens {
		if exp <= now.Unix() {
			delete(j.revokedTokens, token)
			purged++
		}
	}
	return purged
}

// GenerateSSEToken generates a short-lived token for EventSource connections,
// which cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(sessionID string) (token string, expiresIn int, err error) {
	expiresIn = int(sseTokenLifetime.Seconds())
	expiresAt := time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"session_id": sessionID,
		"type":       TokenTypeSSE,
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the session ID
func (j *JWTService) ValidateSSEToken(tokenString string) (sessionID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	sessionIDVal, ok := token.Get("session_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	sessionID, ok = sessionIDVal.(string)
	if !ok || sessionID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return sessionID, nil
}
