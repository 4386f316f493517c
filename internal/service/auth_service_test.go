package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/config"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/events"
	"github.com/campuskit/forum-service/internal/session"
)

func newAuthServiceFixture(t *testing.T) (*AuthService, *fakeUserRepo, *cache.MemoryCache) {
	t.Helper()
	mem := cache.NewMemoryCache()
	users := &fakeUserRepo{users: make(map[string]*domain.User)}
	tokens := auth.NewTokenManager("auth-service-test", "campus-forum", 30*time.Minute)
	registry := session.NewRegistry(mem, users, tokens, events.NewInMemoryDispatcher(), zap.NewNop(), session.Config{})

	svc := NewAuthService(config.AuthConfig{BcryptCost: 4, VerifyCodeTTLMinutes: 5}, AuthDependencies{
		UserRepo: users,
		Registry: registry,
		Cache:    mem,
		Logger:   zap.NewNop(),
	})
	return svc, users, mem
}

func issueCode(t *testing.T, svc *AuthService, mem *cache.MemoryCache, phone string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.SendVerifyCode(ctx, phone))
	code, err := mem.Get(ctx, cache.KeyVerifyCode(phone))
	require.NoError(t, err)
	return code
}

func TestRegisterRequiresValidCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthServiceFixture(t)

	_, err := svc.Register(ctx, RegisterInput{Phone: "13800000001", VerifyCode: "000000"})
	assert.Error(t, err)
}

func TestRegisterCreatesPendingStudent(t *testing.T) {
	ctx := context.Background()
	svc, users, mem := newAuthServiceFixture(t)
	code := issueCode(t, svc, mem, "13800000001")

	user, err := svc.Register(ctx, RegisterInput{
		Phone:      "13800000001",
		Nickname:   "amy",
		Password:   "s3cret-pass",
		StudentID:  "20260001",
		VerifyCode: code,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusPending, user.AuthStatus)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	// The code is single use.
	_, err = mem.Get(ctx, cache.KeyVerifyCode("13800000001"))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	// Re-registering the same phone conflicts.
	_, ok := users.users[user.ID]
	require.True(t, ok)
	code = issueCode(t, svc, mem, "13800000001")
	_, err = svc.Register(ctx, RegisterInput{Phone: "13800000001", Password: "x", VerifyCode: code})
	assert.Error(t, err)
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, mem := newAuthServiceFixture(t)

	code := issueCode(t, svc, mem, "13800000002")
	user, err := svc.Register(ctx, RegisterInput{
		Phone:      "13800000002",
		Nickname:   "ben",
		Password:   "correct-horse",
		VerifyCode: code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	t.Run("pending account rejected", func(t *testing.T) {
		code := issueCode(t, svc, mem, "13800000002")
		_, err := svc.Login(ctx, "13800000002", "correct-horse", code)
		assert.Error(t, err)
	})

	user.AuthStatus = domain.AuthStatusApproved

	t.Run("wrong password rejected", func(t *testing.T) {
		code := issueCode(t, svc, mem, "13800000002")
		_, err := svc.Login(ctx, "13800000002", "wrong", code)
		assert.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		code := issueCode(t, svc, mem, "13800000002")
		result, err := svc.Login(ctx, "13800000002", "correct-horse", code)
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.UserID)
		assert.Equal(t, "ben", result.Nickname)
		assert.NotEmpty(t, result.Credentials.AccessToken)
		assert.NotEmpty(t, result.Credentials.RefreshToken)

		// The pair round-trips through the registry.
		next, err := svc.Refresh(ctx, result.Credentials.RefreshToken)
		require.NoError(t, err)
		svc.Logout(ctx, next.RefreshToken)
		_, err = svc.Refresh(ctx, next.RefreshToken)
		assert.Error(t, err)
	})
}
