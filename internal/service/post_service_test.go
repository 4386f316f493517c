package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/counter"
	"github.com/campuskit/forum-service/internal/domain"
)

type fakePostRepo struct {
	posts map[string]*domain.Post
	seq   int
}

func (f *fakePostRepo) Create(_ context.Context, post *domain.Post) error {
	f.seq++
	post.ID = fmt.Sprintf("post-%d", f.seq)
	post.CreatedAt = time.Now()
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) GetByIDs(_ context.Context, ids []string) ([]*domain.Post, error) {
	out := make([]*domain.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := f.posts[id]; ok {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePostRepo) List(_ context.Context, _ *string, _, _ int) ([]*domain.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) Search(_ context.Context, _ string, _ *string, _, _ int) ([]*domain.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) ListHot(_ context.Context, limit int) ([]*domain.Post, error) {
	out := make([]*domain.Post, 0, len(f.posts))
	for _, post := range f.posts {
		copied := *post
		out = append(out, &copied)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepo) UpdateViewStats(_ context.Context, id string, viewCount int64, hotScore float64) error {
	post, ok := f.posts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	post.ViewCount = viewCount
	post.HotScore = hotScore
	return nil
}

func (f *fakePostRepo) UpdateLikeStats(_ context.Context, id string, likeCount int64, hotScore float64) error {
	post, ok := f.posts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	post.LikeCount = likeCount
	post.HotScore = hotScore
	return nil
}

func (f *fakePostRepo) UpdateStatus(_ context.Context, id string, status domain.PostStatus) error {
	post, ok := f.posts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	post.Status = status
	return nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return category, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListByAuthStatus(_ context.Context, status domain.AuthStatus, _, _ int) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range f.users {
		if user.AuthStatus == status {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeLikeRepo struct {
	postLikes    map[string]*domain.LikeEdge
	commentLikes map[string]*domain.LikeEdge
	seq          int
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{
		postLikes:    make(map[string]*domain.LikeEdge),
		commentLikes: make(map[string]*domain.LikeEdge),
	}
}

func (f *fakeLikeRepo) GetPostLike(_ context.Context, postID, userID string) (*domain.LikeEdge, error) {
	for _, edge := range f.postLikes {
		if edge.SubjectID == postID && edge.UserID == userID {
			return edge, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLikeRepo) CreatePostLike(_ context.Context, edge *domain.LikeEdge) error {
	f.seq++
	edge.ID = fmt.Sprintf("like-%d", f.seq)
	edge.CreatedAt = time.Now()
	f.postLikes[edge.ID] = edge
	return nil
}

func (f *fakeLikeRepo) DeletePostLike(_ context.Context, id string) error {
	delete(f.postLikes, id)
	return nil
}

func (f *fakeLikeRepo) GetCommentLike(_ context.Context, commentID, userID string) (*domain.LikeEdge, error) {
	for _, edge := range f.commentLikes {
		if edge.SubjectID == commentID && edge.UserID == userID {
			return edge, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLikeRepo) CreateCommentLike(_ context.Context, edge *domain.LikeEdge) error {
	f.seq++
	edge.ID = fmt.Sprintf("clike-%d", f.seq)
	f.commentLikes[edge.ID] = edge
	return nil
}

func (f *fakeLikeRepo) DeleteCommentLike(_ context.Context, id string) error {
	delete(f.commentLikes, id)
	return nil
}

func (f *fakeLikeRepo) ListLikedCommentIDs(_ context.Context, userID string, commentIDs []string) ([]string, error) {
	wanted := make(map[string]struct{}, len(commentIDs))
	for _, id := range commentIDs {
		wanted[id] = struct{}{}
	}
	var out []string
	for _, edge := range f.commentLikes {
		if edge.UserID != userID {
			continue
		}
		if _, ok := wanted[edge.SubjectID]; ok {
			out = append(out, edge.SubjectID)
		}
	}
	return out, nil
}

type postServiceFixture struct {
	service *PostService
	posts   *fakePostRepo
	users   *fakeUserRepo
	likes   *fakeLikeRepo
	mem     *cache.MemoryCache
}

func newPostServiceFixture(t *testing.T) *postServiceFixture {
	t.Helper()
	mem := cache.NewMemoryCache()
	posts := &fakePostRepo{posts: map[string]*domain.Post{
		"p1": {ID: "p1", Title: "dorm wifi fix", CategoryID: "c1", AuthorID: "author", ViewCount: 10, LikeCount: 2, Status: domain.PostStatusNormal},
	}}
	users := &fakeUserRepo{users: map[string]*domain.User{
		"author": {ID: "author", Nickname: "amy", AuthStatus: domain.AuthStatusApproved, Role: domain.RoleStudent},
		"viewer": {ID: "viewer", Nickname: "ben", AuthStatus: domain.AuthStatusApproved, Role: domain.RoleStudent},
	}}
	categories := &fakeCategoryRepo{categories: map[string]*domain.Category{
		"c1": {ID: "c1", Name: "campus life", IsActive: true},
		"c2": {ID: "c2", Name: "retired", IsActive: false},
	}}
	likes := newFakeLikeRepo()

	svc := NewPostService(PostDependencies{
		PostRepo:     posts,
		CategoryRepo: categories,
		UserRepo:     users,
		LikeRepo:     likes,
		Views:        counter.NewViews(mem),
		Ranker:       counter.NewHotRanker(mem, posts, zap.NewNop(), time.Hour, 10),
		HotListSize:  10,
	})
	return &postServiceFixture{service: svc, posts: posts, users: users, likes: likes, mem: mem}
}

func TestPostCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	t.Run("ok", func(t *testing.T) {
		post, err := f.service.Create(ctx, "author", PostCreateInput{
			Title:      "selling bike",
			Content:    "good condition",
			CategoryID: "c1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, domain.PostStatusNormal, post.Status)
	})

	t.Run("short title", func(t *testing.T) {
		_, err := f.service.Create(ctx, "author", PostCreateInput{Title: "hi", CategoryID: "c1"})
		assert.Error(t, err)
	})

	t.Run("inactive category", func(t *testing.T) {
		_, err := f.service.Create(ctx, "author", PostCreateInput{Title: "selling bike", CategoryID: "c2"})
		assert.Error(t, err)
	})

	t.Run("muted author", func(t *testing.T) {
		f.users.users["author"].IsMuted = true
		defer func() { f.users.users["author"].IsMuted = false }()
		_, err := f.service.Create(ctx, "author", PostCreateInput{Title: "selling bike", CategoryID: "c1"})
		assert.Error(t, err)
	})
}

func TestPostDetailFoldsPendingViews(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	first, err := f.service.Detail(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.Equal(t, int64(11), first.ViewCount, "durable 10 plus this view")
	assert.Equal(t, "amy", first.AuthorNickname)
	assert.Equal(t, "campus life", first.CategoryName)
	assert.False(t, first.IsLiked)

	second, err := f.service.Detail(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.Equal(t, int64(12), second.ViewCount)

	// Durable count is untouched until the reconciler drains the delta.
	assert.Equal(t, int64(10), f.posts.posts["p1"].ViewCount)

	val, err := f.mem.Get(ctx, cache.KeyViewDelta("p1"))
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}

func TestPostToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	liked, err := f.service.ToggleLike(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(3), f.posts.posts["p1"].LikeCount)
	assert.InDelta(t, domain.ComputeHotScore(10, 3), f.posts.posts["p1"].HotScore, 1e-9)

	liked, err = f.service.ToggleLike(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(2), f.posts.posts["p1"].LikeCount)

	t.Run("missing post", func(t *testing.T) {
		_, err := f.service.ToggleLike(ctx, "nope", "viewer")
		assert.Error(t, err)
	})
}

func TestPostToggleLikeUsesPendingViews(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	// Two unflushed views raise the score's view component.
	_, err := f.service.Detail(ctx, "p1", "")
	require.NoError(t, err)
	_, err = f.service.Detail(ctx, "p1", "")
	require.NoError(t, err)

	_, err = f.service.ToggleLike(ctx, "p1", "viewer")
	require.NoError(t, err)
	assert.InDelta(t, domain.ComputeHotScore(12, 3), f.posts.posts["p1"].HotScore, 1e-9)
}

func TestPostDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	err := f.service.Delete(ctx, "viewer", "p1")
	assert.Error(t, err, "only the author may delete")

	require.NoError(t, f.service.Delete(ctx, "author", "p1"))
	assert.Equal(t, domain.PostStatusDeleted, f.posts.posts["p1"].Status)

	_, err = f.service.Detail(ctx, "p1", "")
	assert.Error(t, err, "deleted posts are invisible")
}

func TestHotPostsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	f := newPostServiceFixture(t)

	f.posts.posts["p2"] = &domain.Post{ID: "p2", Title: "hot two", Status: domain.PostStatusNormal}
	f.posts.posts["p3"] = &domain.Post{ID: "p3", Title: "gone", Status: domain.PostStatusDeleted}

	require.NoError(t, f.mem.ZAdd(ctx, cache.KeyHotPosts, "p2", 50))
	require.NoError(t, f.mem.ZAdd(ctx, cache.KeyHotPosts, "p1", 20))
	require.NoError(t, f.mem.ZAdd(ctx, cache.KeyHotPosts, "p3", 90))
	require.NoError(t, f.mem.ZAdd(ctx, cache.KeyHotPosts, "stale", 5))

	posts, err := f.service.HotPosts(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	// Deleted and stale members drop out; score order is preserved.
	assert.Equal(t, []string{"p2", "p1"}, ids)
}
