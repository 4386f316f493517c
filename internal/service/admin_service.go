package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/events"
	"github.com/campuskit/forum-service/internal/repository"
	"github.com/campuskit/forum-service/internal/session"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// AdminService coordinates moderation workflows. Role enforcement happens in
// the HTTP guard; services only add self-targeting checks.
type AdminService struct {
	users      repository.UserRepository
	posts      repository.PostRepository
	comments   *CommentService
	registry   *session.Registry
	dispatcher events.Dispatcher
}

// AdminDependencies bundles requirements for the admin service.
type AdminDependencies struct {
	UserRepo   repository.UserRepository
	PostRepo   repository.PostRepository
	Comments   *CommentService
	Registry   *session.Registry
	Dispatcher events.Dispatcher
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		users:      deps.UserRepo,
		posts:      deps.PostRepo,
		comments:   deps.Comments,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
	}
}

// ReviewAuth approves or rejects a pending registration.
func (s *AdminService) ReviewAuth(ctx context.Context, userID string, status domain.AuthStatus) error {
	if status != domain.AuthStatusApproved && status != domain.AuthStatusRejected {
		return apperrors.NewValidationError("auth status must be approved or rejected", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.AuthStatus = status
	return s.users.Update(ctx, user)
}

// Mute toggles a member's mute flag.
func (s *AdminService) Mute(ctx context.Context, adminID, userID string, muted bool) error {
	if adminID == userID {
		return apperrors.NewValidationError("cannot mute self", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.IsMuted = muted
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewUserMuted(userID, muted))
	}
	return nil
}

// Kick force-logs-out a member everywhere by revoking the whole session set.
func (s *AdminService) Kick(ctx context.Context, adminID, userID string) error {
	if userID == "" {
		return apperrors.NewValidationError("user id required", nil)
	}
	if adminID == userID {
		return apperrors.NewValidationError("cannot kick self", nil)
	}
	return s.registry.RevokeAll(ctx, userID)
}

// ChangeRole updates a member's role and revokes their sessions so the new
// role takes effect on the next validated call, not at token expiry.
func (s *AdminService) ChangeRole(ctx context.Context, adminID, userID string, role domain.Role) error {
	if adminID == userID {
		return apperrors.NewValidationError("cannot change own role", nil)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return apperrors.NewValidationError("unknown role", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	oldRole := user.Role
	if oldRole == role {
		return nil
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewRoleChanged(userID, string(oldRole), string(role)))
	}
	return s.registry.RevokeAll(ctx, userID)
}

// ForceDeletePost removes any post and records the moderation action.
func (s *AdminService) ForceDeletePost(ctx context.Context, adminID, postID string) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("post", nil)
		}
		return err
	}
	if err := s.posts.UpdateStatus(ctx, postID, domain.PostStatusDeleted); err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewPostRemoved(postID, adminID))
	}
	return nil
}

// ForceDeleteComment removes any comment.
func (s *AdminService) ForceDeleteComment(ctx context.Context, adminID, commentID string) error {
	return s.comments.DeleteAsAdmin(ctx, adminID, commentID)
}

// ListUsers pages members by review state, oldest first.
func (s *AdminService) ListUsers(ctx context.Context, status domain.AuthStatus, limit, offset int) ([]*domain.User, error) {
	return s.users.ListByAuthStatus(ctx, status, normalizeLimit(limit), offset)
}

func (s *AdminService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}
