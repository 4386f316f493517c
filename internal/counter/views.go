package counter

import (
	"context"
	"strconv"

	"github.com/campuskit/forum-service/internal/cache"
)

// Views accumulates per-post view deltas in the fast cache. Deltas are drained
// into durable storage by the Reconciler; until then reads combine the durable
// count with the pending delta.
type Views struct {
	cache cache.Cache
}

// NewViews builds the recorder.
func NewViews(c cache.Cache) *Views {
	return &Views{cache: c}
}

// Record counts one view and returns the pending delta after the increment.
func (v *Views) Record(ctx context.Context, postID string) (int64, error) {
	return v.cache.Incr(ctx, cache.KeyViewDelta(postID))
}

// PendingDelta reports views not yet flushed for the post. A missing key is a
// zero delta, not an error.
func (v *Views) PendingDelta(ctx context.Context, postID string) (int64, error) {
	val, err := v.cache.Get(ctx, cache.KeyViewDelta(postID))
	if err == cache.ErrCacheMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	delta, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, nil
	}
	return delta, nil
}
