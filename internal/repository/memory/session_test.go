package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, auth.Session{ID: "live", Email: "a@ydm.sa", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, auth.Session{ID: "old", Email: "b@ydm.sa", ExpiresAt: now.Add(-time.Minute)}))

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "a@ydm.sa", got.Email)

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	assert.ErrorIs(t, store.Delete(ctx, "live"), auth.ErrSessionNotFound)
}
