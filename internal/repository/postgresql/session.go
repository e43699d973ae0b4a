package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/database"
)

type sessionStoreImpl struct {
	db *database.DB
}

// NewSessionStore creates a session store backed by the user_sessions table.
// Session ids are stored hashed.
func NewSessionStore(db *database.DB) auth.SessionStore {
	return &sessionStoreImpl{db: db}
}

// hashID hashes the input string using SHA256 and encodes the result in base64.
func hashID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (s *sessionStoreImpl) Save(ctx context.Context, session auth.Session) error {
	q := GetQuerier(ctx, s.db)
	query := `
		INSERT INTO user_sessions (id_hash, email, gateway_token, remember_me, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id_hash) DO UPDATE
		SET gateway_token = EXCLUDED.gateway_token,
			remember_me = EXCLUDED.remember_me,
			expires_at = EXCLUDED.expires_at
	`
	_, err := q.Exec(ctx, query,
		hashID(session.ID), session.Email, session.GatewayToken, session.Remember,
		session.CreatedAt.UTC(), session.ExpiresAt.UTC())
	return err
}

func (s *sessionStoreImpl) Get(ctx context.Context, id string) (auth.Session, error) {
	q := GetQuerier(ctx, s.db)
	query := `
		SELECT email, gateway_token, remember_me, created_at, expires_at
		FROM user_sessions
		WHERE id_hash = $1
	`

	session := auth.Session{ID: id}
	err := q.QueryRow(ctx, query, hashID(id)).Scan(
		&session.Email, &session.GatewayToken, &session.Remember, &session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}
	return session, nil
}

func (s *sessionStoreImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, s.db)
	tag, err := q.Exec(ctx, `DELETE FROM user_sessions WHERE id_hash = $1`, hashID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

func (s *sessionStoreImpl) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	q := GetQuerier(ctx, s.db)
	tag, err := q.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
