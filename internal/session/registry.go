package session

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/events"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// UserSource is the slice of durable storage the registry needs.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Identity is the authenticated caller of a privileged request. The
// declaration lives in the auth package so the middleware there can name it
// without importing session; this alias keeps session.Identity valid.
type Identity = auth.Identity

// Credentials bundles a freshly issued access/refresh pair.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Registry tracks, per user, the current token version and the set of live
// refresh credentials. Bumping the version is the sole revocation primitive:
// it invalidates every outstanding access and refresh credential at its next
// use, well before expiry.
type Registry struct {
	cache      cache.Cache
	users      UserSource
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger

	refreshTTL   time.Duration
	roleCacheTTL time.Duration
}

// Config carries registry tunables.
type Config struct {
	RefreshTTL   time.Duration
	RoleCacheTTL time.Duration
}

// NewRegistry builds the registry.
func NewRegistry(c cache.Cache, users UserSource, tokens *auth.TokenManager, dispatcher events.Dispatcher, logger *zap.Logger, cfg Config) *Registry {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.RoleCacheTTL <= 0 {
		cfg.RoleCacheTTL = 30 * time.Minute
	}
	return &Registry{
		cache:        c,
		users:        users,
		tokens:       tokens,
		dispatcher:   dispatcher,
		logger:       logger,
		refreshTTL:   cfg.RefreshTTL,
		roleCacheTTL: cfg.RoleCacheTTL,
	}
}

// ValidateAccess verifies a bearer token and checks its embedded version
// against the registry. Every failure, including cache unavailability, maps
// to the same Unauthorized: validation fails closed.
func (r *Registry) ValidateAccess(ctx context.Context, bearer string) (Identity, error) {
	claims, err := r.tokens.Verify(bearer)
	if err != nil {
		return Identity{}, apperrors.NewUnauthorized()
	}

	userID := claims.UserID()
	current, err := r.cache.Get(ctx, cache.KeyTokenVersion(userID))
	if err == cache.ErrCacheMiss {
		// First observation of this user wins; SETNX keeps two concurrent
		// first requests from clobbering each other.
		if _, err := r.cache.SetNX(ctx, cache.KeyTokenVersion(userID), auth.FormatVersion(claims.Version), 0); err != nil {
			return Identity{}, apperrors.NewUnauthorized()
		}
	} else if err != nil {
		return Identity{}, apperrors.NewUnauthorized()
	} else {
		version, parseErr := strconv.ParseInt(current, 10, 64)
		if parseErr != nil || version != claims.Version {
			return Identity{}, apperrors.NewUnauthorized()
		}
	}

	role, err := r.ResolveRole(ctx, userID)
	if err != nil {
		return Identity{}, apperrors.NewUnauthorized()
	}
	return Identity{UserID: userID, Role: role}, nil
}

// ResolveRole is a read-through cache over the durable user record.
func (r *Registry) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	cached, err := r.cache.Get(ctx, cache.KeyUserRole(userID))
	if err == nil {
		if role, parseErr := domain.ParseRole(cached); parseErr == nil {
			return role, nil
		}
	} else if err != cache.ErrCacheMiss {
		return "", err
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return "", apperrors.NewNotFound("user", nil)
	}
	if cacheErr := r.cache.Set(ctx, cache.KeyUserRole(userID), string(user.Role), r.roleCacheTTL); cacheErr != nil {
		r.logger.Warn("role cache write failed", zap.String("user_id", userID), zap.Error(cacheErr))
	}
	return user.Role, nil
}

// Login issues a fresh access/refresh pair bound to the user's current token
// version. Password and verify-code checks happen in the auth service before
// this is called.
func (r *Registry) Login(ctx context.Context, userID string, role domain.Role) (Credentials, error) {
	version, err := r.currentVersion(ctx, userID)
	if err != nil {
		return Credentials{}, err
	}

	accessToken, _, err := r.tokens.Issue(userID, role, version)
	if err != nil {
		return Credentials{}, err
	}

	refreshToken := newRefreshToken()
	if err := r.storeRefreshToken(ctx, refreshToken, userID, version); err != nil {
		return Credentials{}, err
	}
	if err := r.cache.Set(ctx, cache.KeyUserRole(userID), string(role), r.roleCacheTTL); err != nil {
		r.logger.Warn("role cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    r.tokens.ExpiresInSeconds(),
	}, nil
}

// Refresh rotates a refresh credential: the old one is consumed, and a new
// pair is issued. Absent, garbled, or version-stale credentials fail
// uniformly.
func (r *Registry) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Credentials{}, apperrors.NewUnauthorized()
	}

	stored, err := r.cache.Get(ctx, cache.KeyRefreshToken(refreshToken))
	if err != nil {
		return Credentials{}, apperrors.NewUnauthorized()
	}
	userID, storedVersion, ok := parseRefreshValue(stored)
	if !ok {
		return Credentials{}, apperrors.NewUnauthorized()
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return Credentials{}, apperrors.NewUnauthorized()
	}
	if user.AuthStatus != domain.AuthStatusApproved {
		return Credentials{}, apperrors.NewForbidden("account not approved")
	}

	version, err := r.currentVersion(ctx, userID)
	if err != nil {
		return Credentials{}, apperrors.NewUnauthorized()
	}
	if version != storedVersion {
		return Credentials{}, apperrors.NewUnauthorized()
	}

	// Single use: consume the old credential before minting its successor.
	r.deleteRefreshToken(ctx, userID, refreshToken)

	accessToken, _, err := r.tokens.Issue(userID, user.Role, version)
	if err != nil {
		return Credentials{}, err
	}
	next := newRefreshToken()
	if err := r.storeRefreshToken(ctx, next, userID, version); err != nil {
		return Credentials{}, err
	}
	if err := r.cache.Set(ctx, cache.KeyUserRole(userID), string(user.Role), r.roleCacheTTL); err != nil {
		r.logger.Warn("role cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return Credentials{
		AccessToken:  accessToken,
		RefreshToken: next,
		ExpiresIn:    r.tokens.ExpiresInSeconds(),
	}, nil
}

// Logout drops a single refresh credential. Best effort: a missing credential
// is a no-op, never an error.
func (r *Registry) Logout(ctx context.Context, refreshToken string) {
	if strings.TrimSpace(refreshToken) == "" {
		return
	}
	stored, err := r.cache.Get(ctx, cache.KeyRefreshToken(refreshToken))
	if err != nil {
		return
	}
	userID, _, ok := parseRefreshValue(stored)
	if !ok {
		return
	}
	r.deleteRefreshToken(ctx, userID, refreshToken)
}

// RevokeAll invalidates the user's entire active session set: bumps the token
// version, evicts the cached role, and deletes every live refresh credential.
// Outstanding access tokens die at their next ValidateAccess, refresh tokens
// at their next Refresh.
func (r *Registry) RevokeAll(ctx context.Context, userID string) error {
	if _, err := r.cache.Incr(ctx, cache.KeyTokenVersion(userID)); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, cache.KeyUserRole(userID)); err != nil {
		r.logger.Warn("role cache evict failed", zap.String("user_id", userID), zap.Error(err))
	}

	setKey := cache.KeyRefreshSet(userID)
	tokens, err := r.cache.SMembers(ctx, setKey)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := r.cache.Del(ctx, cache.KeyRefreshToken(token)); err != nil {
			r.logger.Warn("refresh token delete failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if err := r.cache.Del(ctx, setKey); err != nil {
		r.logger.Warn("refresh set delete failed", zap.String("user_id", userID), zap.Error(err))
	}

	if r.dispatcher != nil {
		_ = r.dispatcher.Publish(ctx, events.NewSessionsRevoked(userID, len(tokens)))
	}
	return nil
}

func (r *Registry) currentVersion(ctx context.Context, userID string) (int64, error) {
	key := cache.KeyTokenVersion(userID)
	created, err := r.cache.SetNX(ctx, key, "1", 0)
	if err != nil {
		return 0, err
	}
	if created {
		return 1, nil
	}
	current, err := r.cache.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	version, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		// Garbled version entry; reset to the epoch start.
		if setErr := r.cache.Set(ctx, key, "1", 0); setErr != nil {
			return 0, setErr
		}
		return 1, nil
	}
	return version, nil
}

func (r *Registry) storeRefreshToken(ctx context.Context, token, userID string, version int64) error {
	value := userID + ":" + auth.FormatVersion(version)
	if err := r.cache.Set(ctx, cache.KeyRefreshToken(token), value, r.refreshTTL); err != nil {
		return err
	}
	setKey := cache.KeyRefreshSet(userID)
	if err := r.cache.SAdd(ctx, setKey, token); err != nil {
		return err
	}
	return r.cache.Expire(ctx, setKey, r.refreshTTL)
}

func (r *Registry) deleteRefreshToken(ctx context.Context, userID, token string) {
	if err := r.cache.Del(ctx, cache.KeyRefreshToken(token)); err != nil {
		r.logger.Warn("refresh token delete failed", zap.String("user_id", userID), zap.Error(err))
	}
	if err := r.cache.SRem(ctx, cache.KeyRefreshSet(userID), token); err != nil {
		r.logger.Warn("refresh set update failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func parseRefreshValue(value string) (userID string, version int64, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	version, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[0], version, true
}

func newRefreshToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
