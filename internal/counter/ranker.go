package counter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/domain"
)

// HotSource supplies the durable fallback query for a cold ranked set.
type HotSource interface {
	ListHot(ctx context.Context, limit int) ([]*domain.Post, error)
}

// HotRanker mirrors post hot scores in a cache-resident ranked set. The whole
// structure carries a bounded TTL; an expired or empty set is rebuilt from
// durable storage on the next read.
type HotRanker struct {
	cache  cache.Cache
	posts  HotSource
	logger *zap.Logger
	ttl    time.Duration
	size   int
}

// NewHotRanker builds the ranker.
func NewHotRanker(c cache.Cache, posts HotSource, logger *zap.Logger, ttl time.Duration, size int) *HotRanker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if size <= 0 {
		size = 10
	}
	return &HotRanker{cache: c, posts: posts, logger: logger, ttl: ttl, size: size}
}

// RecordScore upserts the post into the ranked set and re-arms the TTL.
func (h *HotRanker) RecordScore(ctx context.Context, postID string, score float64) error {
	if err := h.cache.ZAdd(ctx, cache.KeyHotPosts, postID, score); err != nil {
		return err
	}
	return h.cache.Expire(ctx, cache.KeyHotPosts, h.ttl)
}

// TopIDs returns up to n post ids, highest score first. An empty or expired
// set is rebuilt from the durable query ordered by hot score then recency.
func (h *HotRanker) TopIDs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = h.size
	}
	ids, err := h.cache.ZRevRange(ctx, cache.KeyHotPosts, 0, int64(n)-1)
	if err != nil {
		h.logger.Warn("hot set read failed; falling back to durable query", zap.Error(err))
	}
	if err == nil && len(ids) > 0 {
		return ids, nil
	}
	return h.rebuild(ctx, n)
}

func (h *HotRanker) rebuild(ctx context.Context, n int) ([]string, error) {
	posts, err := h.posts.ListHot(ctx, n)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
		if err := h.cache.ZAdd(ctx, cache.KeyHotPosts, post.ID, post.HotScore); err != nil {
			h.logger.Warn("hot set repopulate failed", zap.String("post_id", post.ID), zap.Error(err))
		}
	}
	if len(posts) > 0 {
		if err := h.cache.Expire(ctx, cache.KeyHotPosts, h.ttl); err != nil {
			h.logger.Warn("hot set expire failed", zap.Error(err))
		}
	}
	return ids, nil
}
