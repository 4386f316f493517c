package counter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/domain"
)

type orderedHotSource struct {
	posts []*domain.Post
	calls int
}

func (s *orderedHotSource) ListHot(_ context.Context, limit int) ([]*domain.Post, error) {
	s.calls++
	if len(s.posts) > limit {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

func TestHotRankerRecordAndRead(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	source := &orderedHotSource{}
	ranker := NewHotRanker(mem, source, zap.NewNop(), time.Hour, 10)

	require.NoError(t, ranker.RecordScore(ctx, "p1", 3.5))
	require.NoError(t, ranker.RecordScore(ctx, "p2", 9.0))
	require.NoError(t, ranker.RecordScore(ctx, "p3", 0.7))

	ids, err := ranker.TopIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids)
	assert.Zero(t, source.calls, "a warm set never hits durable storage")

	ids, err = ranker.TopIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
}

func TestHotRankerRebuildsColdSet(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	source := &orderedHotSource{posts: []*domain.Post{
		{ID: "p9", HotScore: 40},
		{ID: "p4", HotScore: 12},
		{ID: "p7", HotScore: 3},
	}}
	ranker := NewHotRanker(mem, source, zap.NewNop(), time.Hour, 10)

	// Cold start: ids come back in the durable query's order.
	ids, err := ranker.TopIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p9", "p4", "p7"}, ids)
	assert.Equal(t, 1, source.calls)

	// The rebuild repopulated the set; the next read is served from it.
	ids, err = ranker.TopIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p9", "p4", "p7"}, ids)
	assert.Equal(t, 1, source.calls)
}

func TestHotRankerScoreUpdateReorders(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	ranker := NewHotRanker(mem, &orderedHotSource{}, zap.NewNop(), time.Hour, 10)

	require.NoError(t, ranker.RecordScore(ctx, "p1", 1))
	require.NoError(t, ranker.RecordScore(ctx, "p2", 2))
	ids, err := ranker.TopIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	require.NoError(t, ranker.RecordScore(ctx, "p1", 5))
	ids, err = ranker.TopIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}
