package counter

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/domain"
)

// PostStore is the slice of durable storage the reconciler needs.
type PostStore interface {
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	UpdateViewStats(ctx context.Context, id string, viewCount int64, hotScore float64) error
}

// Reconciler drains pending view deltas from the fast cache into durable
// storage on a fixed interval, recomputing each affected post's hot score.
// At-least-once: a delta is deleted only after the durable write succeeds, so
// a crash mid-pass leaves unprocessed deltas for the next cycle.
type Reconciler struct {
	cache    cache.Cache
	posts    PostStore
	ranker   *HotRanker
	logger   *zap.Logger
	interval time.Duration

	// Serializes passes; an overlapping tick is skipped, never queued.
	passMu sync.Mutex
}

// NewReconciler builds the reconciler.
func NewReconciler(c cache.Cache, posts PostStore, ranker *HotRanker, logger *zap.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Reconciler{
		cache:    c,
		posts:    posts,
		ranker:   ranker,
		logger:   logger,
		interval: interval,
	}
}

// Run executes reconciliation passes until ctx is cancelled. Failures are
// logged and retried on the next tick; they never abort the process.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("counter reconciler started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("counter reconciler stopped")
			return
		case <-ticker.C:
			if !r.passMu.TryLock() {
				r.logger.Warn("previous reconciliation pass still running; skipping tick")
				continue
			}
			r.drain(ctx)
			r.passMu.Unlock()
		}
	}
}

// RunPass performs a single reconciliation pass.
func (r *Reconciler) RunPass(ctx context.Context) {
	r.passMu.Lock()
	defer r.passMu.Unlock()
	r.drain(ctx)
}

func (r *Reconciler) drain(ctx context.Context) {
	keys, err := r.cache.ScanPrefix(ctx, cache.ViewDeltaPrefix())
	if err != nil {
		r.logger.Error("view delta scan failed", zap.Error(err))
		return
	}

	flushed := 0
	for _, key := range keys {
		postID := strings.TrimPrefix(key, cache.ViewDeltaPrefix())
		if postID == "" {
			continue
		}
		if r.flushOne(ctx, key, postID) {
			flushed++
		}
	}
	if flushed > 0 || len(keys) > 0 {
		r.logger.Info("view counts reconciled", zap.Int("pending", len(keys)), zap.Int("flushed", flushed))
	}
}

func (r *Reconciler) flushOne(ctx context.Context, key, postID string) bool {
	val, err := r.cache.Get(ctx, key)
	if err == cache.ErrCacheMiss {
		return false
	}
	if err != nil {
		r.logger.Warn("view delta read failed", zap.String("post_id", postID), zap.Error(err))
		return false
	}
	delta, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false
	}
	if delta <= 0 {
		// Already flushed or never populated; drop the stray key.
		_ = r.cache.Del(ctx, key)
		return false
	}

	post, err := r.posts.GetByID(ctx, postID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Post is gone; its delta has nowhere to land.
		_ = r.cache.Del(ctx, key)
		return false
	}
	if err != nil {
		r.logger.Warn("post read failed", zap.String("post_id", postID), zap.Error(err))
		return false
	}

	newViewCount := post.ViewCount + delta
	hotScore := domain.ComputeHotScore(newViewCount, post.LikeCount)
	if err := r.posts.UpdateViewStats(ctx, postID, newViewCount, hotScore); err != nil {
		// Keep the delta; the next pass retries. Deleting first would lose it.
		r.logger.Warn("view stats write failed", zap.String("post_id", postID), zap.Error(err))
		return false
	}
	if err := r.cache.Del(ctx, key); err != nil {
		// Worst case the next pass double-applies this delta; the window is
		// a cache delete immediately after a successful write.
		r.logger.Warn("view delta delete failed", zap.String("post_id", postID), zap.Error(err))
	}
	if r.ranker != nil {
		if err := r.ranker.RecordScore(ctx, postID, hotScore); err != nil {
			r.logger.Warn("hot score publish failed", zap.String("post_id", postID), zap.Error(err))
		}
	}
	return true
}
