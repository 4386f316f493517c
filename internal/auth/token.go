package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/campuskit/forum-service/internal/domain"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// malformed payload, wrong issuer. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and validates signed access credentials. It performs no
// I/O; trust beyond the signature (revocation) lives in the session registry.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Claims describes the access credential payload.
type Claims struct {
	Role    domain.Role `json:"role"`
	Version int64       `json:"ver"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// Issue builds and signs an access credential for the subject.
func (tm *TokenManager) Issue(userID string, role domain.Role, tokenVersion int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Role:    role,
		Version: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tm.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates signature, expiry, and issuer, returning the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := domain.ParseRole(string(claims.Role)); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL returns the configured access credential lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// ExpiresInSeconds reports the lifetime as whole seconds for API responses.
func (tm *TokenManager) ExpiresInSeconds() int64 {
	return int64(tm.ttl / time.Second)
}

// FormatVersion renders a token version the way the registry stores it.
func FormatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}
