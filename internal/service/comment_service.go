package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/events"
	"github.com/campuskit/forum-service/internal/repository"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// CommentService coordinates comment workflows.
type CommentService struct {
	comments   repository.CommentRepository
	posts      repository.PostRepository
	users      repository.UserRepository
	likes      repository.LikeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	likeLocks  stripedLock
}

// CommentDependencies bundles requirements for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	PostRepo    repository.PostRepository
	UserRepo    repository.UserRepository
	LikeRepo    repository.LikeRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CommentNode is one comment with its direct replies.
type CommentNode struct {
	Comment        *domain.Comment
	AuthorNickname string
	IsLiked        bool
	Children       []*CommentNode
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		posts:      deps.PostRepo,
		users:      deps.UserRepo,
		likes:      deps.LikeRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create adds a comment, optionally as a reply to a parent on the same post.
func (s *CommentService) Create(ctx context.Context, userID, postID string, parentID *string, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	if user.IsMuted {
		return nil, apperrors.NewForbidden("account is muted")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil || post.Status != domain.PostStatusNormal {
		return nil, apperrors.NewNotFound("post", nil)
	}
	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil || parent.Status != domain.CommentStatusNormal || parent.PostID != postID {
			return nil, apperrors.NewNotFound("parent comment", nil)
		}
	}

	comment := &domain.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
		Status:   domain.CommentStatusNormal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Tree returns the post's comments as a two-level thread, annotated with the
// viewer's like state.
func (s *CommentService) Tree(ctx context.Context, postID, viewerID string) ([]*CommentNode, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, nil
	}

	liked := make(map[string]bool)
	if viewerID != "" {
		ids := make([]string, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		likedIDs, err := s.likes.ListLikedCommentIDs(ctx, viewerID, ids)
		if err != nil {
			s.logger.Warn("comment like lookup failed", zap.String("post_id", postID), zap.Error(err))
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	nicknames := s.nicknamesFor(ctx, comments)

	nodes := make(map[string]*CommentNode, len(comments))
	var roots []*CommentNode
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{
			Comment:        c,
			AuthorNickname: nicknames[c.UserID],
			IsLiked:        liked[c.ID],
		}
	}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.getNormalComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperrors.NewForbidden("not the comment owner")
	}
	return s.comments.UpdateStatus(ctx, commentID, domain.CommentStatusDeleted)
}

// DeleteAsAdmin removes any comment and records the moderation action.
func (s *CommentService) DeleteAsAdmin(ctx context.Context, adminID, commentID string) error {
	if _, err := s.getNormalComment(ctx, commentID); err != nil {
		return err
	}
	if err := s.comments.UpdateStatus(ctx, commentID, domain.CommentStatusDeleted); err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewCommentRemoved(commentID, adminID))
	}
	return nil
}

// ToggleLike flips the caller's like edge for the comment. Same per-key
// serialization as post likes; comments carry no hot score.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID string) (bool, error) {
	mu := s.likeLocks.forKey(commentID + ":" + userID)
	mu.Lock()
	defer mu.Unlock()

	comment, err := s.getNormalComment(ctx, commentID)
	if err != nil {
		return false, err
	}

	existing, err := s.likes.GetCommentLike(ctx, commentID, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	var liked bool
	var newLikeCount int64
	if existing != nil {
		if err := s.likes.DeleteCommentLike(ctx, existing.ID); err != nil {
			return false, err
		}
		newLikeCount = comment.LikeCount - 1
		if newLikeCount < 0 {
			newLikeCount = 0
		}
		liked = false
	} else {
		edge := &domain.LikeEdge{SubjectID: commentID, UserID: userID}
		if err := s.likes.CreateCommentLike(ctx, edge); err != nil {
			return false, err
		}
		newLikeCount = comment.LikeCount + 1
		liked = true
	}

	if err := s.comments.UpdateLikeCount(ctx, commentID, newLikeCount); err != nil {
		return false, err
	}
	return liked, nil
}

func (s *CommentService) getNormalComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", nil)
		}
		return nil, err
	}
	if comment.Status != domain.CommentStatusNormal {
		return nil, apperrors.NewNotFound("comment", nil)
	}
	return comment, nil
}

func (s *CommentService) nicknamesFor(ctx context.Context, comments []*domain.Comment) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range comments {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}
	nicknames := make(map[string]string, len(ids))
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("comment author lookup failed", zap.Error(err))
		return nicknames
	}
	for _, user := range users {
		nicknames[user.ID] = user.Nickname
	}
	return nicknames
}
