package session

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/events"
)

type fakeUserSource struct {
	users map[string]*domain.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newTestRegistry(t *testing.T) (*Registry, *cache.MemoryCache, *fakeUserSource) {
	t.Helper()
	store := cache.NewMemoryCache()
	users := &fakeUserSource{users: map[string]*domain.User{
		"user-1": {
			ID:         "user-1",
			Nickname:   "amy",
			AuthStatus: domain.AuthStatusApproved,
			Role:       domain.RoleStudent,
		},
	}}
	tokens := auth.NewTokenManager("registry-test-secret", "campus-forum", 30*time.Minute)
	registry := NewRegistry(store, users, tokens, events.NewInMemoryDispatcher(), zap.NewNop(), Config{
		RefreshTTL:   time.Hour,
		RoleCacheTTL: time.Minute,
	})
	return registry, store, users
}

func TestLoginThenValidateAccess(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newTestRegistry(t)

	creds, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.AccessToken)
	assert.NotEmpty(t, creds.RefreshToken)
	assert.Equal(t, int64(1800), creds.ExpiresIn)

	identity, err := registry.ValidateAccess(ctx, creds.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, domain.RoleStudent, identity.Role)
}

func TestValidateAccessRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newTestRegistry(t)

	_, err := registry.ValidateAccess(ctx, "garbage")
	assert.Error(t, err)
}

func TestRefreshRotatesSingleUse(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newTestRegistry(t)

	creds, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)

	next, err := registry.Refresh(ctx, creds.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, creds.RefreshToken, next.RefreshToken)

	// The consumed credential must not work a second time.
	_, err = registry.Refresh(ctx, creds.RefreshToken)
	assert.Error(t, err)

	// Its successor still does.
	_, err = registry.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsUnapprovedUser(t *testing.T) {
	ctx := context.Background()
	registry, _, users := newTestRegistry(t)

	creds, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)

	users.users["user-1"].AuthStatus = domain.AuthStatusRejected
	_, err = registry.Refresh(ctx, creds.RefreshToken)
	assert.Error(t, err)
}

func TestRevokeAllInvalidatesEverything(t *testing.T) {
	ctx := context.Background()
	registry, store, _ := newTestRegistry(t)

	first, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)
	second, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)

	require.NoError(t, registry.RevokeAll(ctx, "user-1"))

	_, err = registry.ValidateAccess(ctx, first.AccessToken)
	assert.Error(t, err, "pre-revocation access token must stop validating")
	_, err = registry.Refresh(ctx, first.RefreshToken)
	assert.Error(t, err)
	_, err = registry.Refresh(ctx, second.RefreshToken)
	assert.Error(t, err)

	members, err := store.SMembers(ctx, cache.KeyRefreshSet("user-1"))
	require.NoError(t, err)
	assert.Empty(t, members)

	// A fresh login works and binds to the bumped version.
	third, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)
	identity, err := registry.ValidateAccess(ctx, third.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
}

func TestLogoutConsumesOnlyGivenToken(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newTestRegistry(t)

	first, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)
	second, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)

	registry.Logout(ctx, first.RefreshToken)

	_, err = registry.Refresh(ctx, first.RefreshToken)
	assert.Error(t, err)
	_, err = registry.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	// Unknown token is a silent no-op.
	registry.Logout(ctx, "never-issued")
}

func TestValidateAccessBootstrapsMissingVersion(t *testing.T) {
	ctx := context.Background()
	registry, store, _ := newTestRegistry(t)

	creds, err := registry.Login(ctx, "user-1", domain.RoleStudent)
	require.NoError(t, err)

	// Simulate a cache wipe between issue and use.
	require.NoError(t, store.Del(ctx, cache.KeyTokenVersion("user-1")))

	identity, err := registry.ValidateAccess(ctx, creds.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)

	stored, err := store.Get(ctx, cache.KeyTokenVersion("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "1", stored)
}
