package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/config"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/repository"
	"github.com/campuskit/forum-service/internal/session"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// AuthService coordinates registration and credential flows. Verify-code and
// password checks happen here; session state itself lives in the registry.
type AuthService struct {
	users      repository.UserRepository
	registry   *session.Registry
	cache      cache.Cache
	logger     *zap.Logger
	bcryptCost int
	codeTTL    time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Registry *session.Registry
	Cache    cache.Cache
	Logger   *zap.Logger
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Phone         string
	Nickname      string
	Password      string
	StudentID     string
	CampusCardURL string
	VerifyCode    string
}

// LoginResult combines issued credentials with user identity fields.
type LoginResult struct {
	Credentials session.Credentials
	UserID      string
	Nickname    string
	Role        domain.Role
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		registry:   deps.Registry,
		cache:      deps.Cache,
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
		codeTTL:    cfg.VerifyCodeTTL(),
	}
}

// SendVerifyCode generates a 6-digit code for the phone and caches it. The
// code is logged instead of sent; SMS delivery is out of scope.
func (s *AuthService) SendVerifyCode(ctx context.Context, phone string) error {
	if strings.TrimSpace(phone) == "" {
		return apperrors.NewValidationError("phone required", nil)
	}
	code := fmt.Sprintf("%06d", rand.IntN(1_000_000))
	if err := s.cache.Set(ctx, cache.KeyVerifyCode(phone), code, s.codeTTL); err != nil {
		return err
	}
	s.logger.Info("verify code issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// Register creates a pending member account after code verification.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := s.checkVerifyCode(ctx, input.Phone, input.VerifyCode); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByPhone(ctx, input.Phone); err == nil {
		return nil, apperrors.NewConflict("phone already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Phone:         input.Phone,
		Nickname:      input.Nickname,
		PasswordHash:  hash,
		StudentID:     input.StudentID,
		CampusCardURL: input.CampusCardURL,
		AuthStatus:    domain.AuthStatusPending,
		Role:          domain.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.consumeVerifyCode(ctx, input.Phone)
	return user, nil
}

// Login authenticates by phone, password, and verify code, then asks the
// registry for a credential pair.
func (s *AuthService) Login(ctx context.Context, phone, password, verifyCode string) (*LoginResult, error) {
	if err := s.checkVerifyCode(ctx, phone, verifyCode); err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized()
	}
	if user.AuthStatus != domain.AuthStatusApproved {
		return nil, apperrors.NewForbidden("account not approved")
	}

	creds, err := s.registry.Login(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	s.consumeVerifyCode(ctx, phone)

	return &LoginResult{
		Credentials: creds,
		UserID:      user.ID,
		Nickname:    user.Nickname,
		Role:        user.Role,
	}, nil
}

// Refresh rotates a refresh credential through the registry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	return s.registry.Refresh(ctx, refreshToken)
}

// Logout drops a single refresh credential; always succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	s.registry.Logout(ctx, refreshToken)
}

func (s *AuthService) checkVerifyCode(ctx context.Context, phone, code string) error {
	cached, err := s.cache.Get(ctx, cache.KeyVerifyCode(phone))
	if err != nil || cached == "" || cached != code {
		return apperrors.NewValidationError("invalid verify code", nil)
	}
	return nil
}

func (s *AuthService) consumeVerifyCode(ctx context.Context, phone string) {
	if err := s.cache.Del(ctx, cache.KeyVerifyCode(phone)); err != nil {
		s.logger.Warn("verify code delete failed", zap.String("phone", phone), zap.Error(err))
	}
}
