package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petlove/internal/modules/access"
	"petlove/internal/testutil"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(testutil.NewPool(t, "user_roles"))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	created, err := store.Create(ctx, &Profile{UserID: "u1", Email: "a@example.com", FirstName: "Ana", LastName: "Reyes", Role: access.RoleUser, CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Create(ctx, &Profile{UserID: "u1", Email: "dup@example.com", CreatedAt: now})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, access.RoleUser, p.Role)
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "Reyes", p.LastName)

	require.NoError(t, store.UpdateName(ctx, "u1", "Ana", "Cruz"))
	p, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Cruz", p.LastName)
	assert.ErrorIs(t, store.UpdateName(ctx, "ghost", "A", "B"), ErrNotFound)

	require.NoError(t, store.UpdateRole(ctx, "u1", access.RoleAdmin))
	p, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, p.Role)

	_, err = store.Create(ctx, &Profile{UserID: "legacy", CreatedAt: now})
	require.NoError(t, err)
	legacy, err := store.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, access.RoleNone, legacy.Role)
	assert.Equal(t, access.RoleUser, legacy.EffectiveRole())
	assert.Empty(t, legacy.FirstName)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.UpdateRole(ctx, "u1", access.RoleUser), ErrNotFound)
}
