package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/repository/postgresql"
)

func setupSessionStore(t *testing.T) auth.SessionStore {
	store, _ := setupSessionStoreWithDB(t)
	return store
}

func setupSessionStoreWithDB(t *testing.T) (auth.SessionStore, *TestDatabaseSetup) {
	t.Helper()
	ctx := context.Background()

	setup, ok, err := NewTestDatabase(ctx)
	if !ok {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, err)
	t.Cleanup(setup.Close)
	require.NoError(t, setup.TruncateAllTables(ctx))

	return postgresql.NewSessionStore(setup.DB), setup
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store := setupSessionStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	session := auth.Session{
		ID:           "3f1c0c1e-6a44-4c7a-9a57-8d1f0b7f2a10",
		Email:        "admin@ydm.sa",
		GatewayToken: "gw-token",
		Remember:     true,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
	}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.GatewayToken, got.GatewayToken)
	assert.True(t, got.Remember)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, session.ID), auth.ErrSessionNotFound)
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	store := setupSessionStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Save(ctx, auth.Session{ID: "live", Email: "a@ydm.sa", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, auth.Session{ID: "old", Email: "b@ydm.sa", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestSessionStore_TransactionRollback(t *testing.T) {
	store, setup := setupSessionStoreWithDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	errAbort := errors.New("abort")

	err := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context) error {
		if err := store.Save(ctx, auth.Session{ID: "tx", Email: "c@ydm.sa", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = store.Get(ctx, "tx")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
