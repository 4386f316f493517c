package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/forum-service/internal/counter"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/repository"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// PostService coordinates post workflows, writing hot counters through the
// fast cache and publishing score changes to the ranker.
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	likes      repository.LikeRepository
	comments   *CommentService
	views      *counter.Views
	ranker     *counter.HotRanker
	hotSize    int
	likeLocks  stripedLock
}

// PostDependencies bundles requirements for the post service.
type PostDependencies struct {
	PostRepo     repository.PostRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	LikeRepo     repository.LikeRepository
	Comments     *CommentService
	Views        *counter.Views
	Ranker       *counter.HotRanker
	HotListSize  int
}

// PostCreateInput describes post creation payload.
type PostCreateInput struct {
	Title       string
	Content     string
	CategoryID  string
	ContactInfo string
}

// PostDetail is the assembled detail view for one post.
type PostDetail struct {
	Post           *domain.Post
	AuthorNickname string
	CategoryName   string
	ViewCount      int64
	HotScore       float64
	IsLiked        bool
	Comments       []*CommentNode
}

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	size := deps.HotListSize
	if size <= 0 {
		size = 10
	}
	return &PostService{
		posts:      deps.PostRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		likes:      deps.LikeRepo,
		comments:   deps.Comments,
		views:      deps.Views,
		ranker:     deps.Ranker,
		hotSize:    size,
	}
}

// Create publishes a new post.
func (s *PostService) Create(ctx context.Context, userID string, input PostCreateInput) (*domain.Post, error) {
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
	if n := utf8.RuneCountInString(input.Title); n < 4 || n > 20 {
		return nil, apperrors.NewValidationError("title must be 4-20 characters", nil)
	}
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil || !category.IsActive {
		return nil, apperrors.NewValidationError("category missing or inactive", nil)
	}

	post := &domain.Post{
		Title:       input.Title,
		Content:     input.Content,
		CategoryID:  input.CategoryID,
		AuthorID:    userID,
		ContactInfo: input.ContactInfo,
		Status:      domain.PostStatusNormal,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete soft-deletes a post owned by the caller.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.getNormalPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperrors.NewForbidden("not the post owner")
	}
	return s.posts.UpdateStatus(ctx, postID, domain.PostStatusDeleted)
}

// List returns a page of normal posts, newest first.
func (s *PostService) List(ctx context.Context, categoryID *string, limit, offset int) ([]*domain.Post, error) {
	return s.posts.List(ctx, categoryID, normalizeLimit(limit), offset)
}

// Search returns a page of normal posts matching the keyword.
func (s *PostService) Search(ctx context.Context, keyword string, categoryID *string, limit, offset int) ([]*domain.Post, error) {
	return s.posts.Search(ctx, keyword, categoryID, normalizeLimit(limit), offset)
}

// HotPosts returns the ranked hot list, tolerating up to one reconciliation
// interval of staleness for the view-driven part of each score.
func (s *PostService) HotPosts(ctx context.Context) ([]*domain.Post, error) {
	ids, err := s.ranker.TopIDs(ctx, s.hotSize)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	fetched, err := s.posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Post, len(fetched))
	for _, post := range fetched {
		byID[post.ID] = post
	}
	ordered := make([]*domain.Post, 0, len(ids))
	for _, id := range ids {
		post, ok := byID[id]
		if !ok || post.Status != domain.PostStatusNormal {
			continue
		}
		ordered = append(ordered, post)
	}
	return ordered, nil
}

// Detail assembles the full post view, counting the read as a view. The
// reported view count folds in the pending cache delta; likes read durable
// state.
func (s *PostService) Detail(ctx context.Context, postID, viewerID string) (*PostDetail, error) {
	post, err := s.getNormalPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	delta, err := s.views.Record(ctx, postID)
	if err != nil {
		// A missed view increment degrades the count, not the request.
		delta = 0
	}
	viewCount := post.ViewCount + delta
	hotScore := domain.ComputeHotScore(viewCount, post.LikeCount)
	_ = s.ranker.RecordScore(ctx, postID, hotScore)

	detail := &PostDetail{
		Post:      post,
		ViewCount: viewCount,
		HotScore:  hotScore,
	}
	if author, err := s.users.GetByID(ctx, post.AuthorID); err == nil {
		detail.AuthorNickname = author.Nickname
	}
	if category, err := s.categories.GetByID(ctx, post.CategoryID); err == nil {
		detail.CategoryName = category.Name
	}
	if viewerID != "" {
		if _, err := s.likes.GetPostLike(ctx, postID, viewerID); err == nil {
			detail.IsLiked = true
		}
	}
	if s.comments != nil {
		tree, err := s.comments.Tree(ctx, postID, viewerID)
		if err != nil {
			return nil, err
		}
		detail.Comments = tree
	}
	return detail, nil
}

// ToggleLike flips the caller's like edge for the post and recomputes the
// durable like count and hot score. Serialized per (post, user) so concurrent
// double-toggles from one user cannot read the same edge state twice.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	mu := s.likeLocks.forKey(postID + ":" + userID)
	mu.Lock()
	defer mu.Unlock()

	post, err := s.getNormalPost(ctx, postID)
	if err != nil {
		return false, err
	}

	delta, err := s.views.PendingDelta(ctx, postID)
	if err != nil {
		delta = 0
	}
	totalViews := post.ViewCount + delta

	existing, err := s.likes.GetPostLike(ctx, postID, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	var liked bool
	var newLikeCount int64
	if existing != nil {
		if err := s.likes.DeletePostLike(ctx, existing.ID); err != nil {
			return false, err
		}
		newLikeCount = post.LikeCount - 1
		if newLikeCount < 0 {
			newLikeCount = 0
		}
		liked = false
	} else {
		edge := &domain.LikeEdge{SubjectID: postID, UserID: userID}
		if err := s.likes.CreatePostLike(ctx, edge); err != nil {
			return false, err
		}
		newLikeCount = post.LikeCount + 1
		liked = true
	}

	hotScore := domain.ComputeHotScore(totalViews, newLikeCount)
	if err := s.posts.UpdateLikeStats(ctx, postID, newLikeCount, hotScore); err != nil {
		return false, err
	}
	_ = s.ranker.RecordScore(ctx, postID, hotScore)
	return liked, nil
}

func (s *PostService) getNormalPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}
	if post.Status != domain.PostStatusNormal {
		return nil, apperrors.NewNotFound("post", nil)
	}
	return post, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
