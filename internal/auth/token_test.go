package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/forum-service/internal/domain"
)

const testSecret = "token-test-secret"

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "campus-forum", 30*time.Minute)

	token, expiresAt, err := tm.Issue("user-1", domain.RoleStudent, 3)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, int64(3), claims.Version)
}

func TestTokenManagerVerifyFailures(t *testing.T) {
	tm := NewTokenManager(testSecret, "campus-forum", 30*time.Minute)

	t.Run("malformed", func(t *testing.T) {
		_, err := tm.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("another-secret", "campus-forum", 30*time.Minute)
		token, _, err := other.Issue("user-1", domain.RoleStudent, 1)
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager(testSecret, "someone-else", 30*time.Minute)
		token, _, err := other.Issue("user-1", domain.RoleStudent, 1)
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{
			Role:    domain.RoleStudent,
			Version: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				Issuer:    "campus-forum",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := &Claims{
			Role:    "SUPERUSER",
			Version: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				Issuer:    "campus-forum",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
