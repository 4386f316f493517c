package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/repository"
	"github.com/campuskit/forum-service/internal/session"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// UserService coordinates member profile flows.
type UserService struct {
	users      repository.UserRepository
	registry   *session.Registry
	bcryptCost int
}

// ProfileUpdateInput describes editable profile fields.
type ProfileUpdateInput struct {
	Nickname      string
	CampusCardURL string
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, registry *session.Registry, bcryptCost int) *UserService {
	return &UserService{users: users, registry: registry, bcryptCost: bcryptCost}
}

// Profile returns the member's own record.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile edits the member's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if nickname := strings.TrimSpace(input.Nickname); nickname != "" {
		user.Nickname = nickname
	}
	if input.CampusCardURL != "" {
		user.CampusCardURL = input.CampusCardURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, writes the new hash, and
// revokes every active session so stolen credentials die with the old
// password.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized()
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.registry.RevokeAll(ctx, userID)
}
