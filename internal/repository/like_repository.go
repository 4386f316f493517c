package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/forum-service/internal/domain"
)

// LikeRepository defines persistence access for like edges. A row's existence
// is the "liked" fact; (subject_id, user_id) is unique per table.
type LikeRepository interface {
	GetPostLike(ctx context.Context, postID, userID string) (*domain.LikeEdge, error)
	CreatePostLike(ctx context.Context, edge *domain.LikeEdge) error
	DeletePostLike(ctx context.Context, id string) error

	GetCommentLike(ctx context.Context, commentID, userID string) (*domain.LikeEdge, error)
	CreateCommentLike(ctx context.Context, edge *domain.LikeEdge) error
	DeleteCommentLike(ctx context.Context, id string) error
	ListLikedCommentIDs(ctx context.Context, userID string, commentIDs []string) ([]string, error)
}

type likeRepository struct {
	pool *pgxpool.Pool
}

// NewLikeRepository returns a Postgres-backed implementation.
func NewLikeRepository(pool *pgxpool.Pool) LikeRepository {
	return &likeRepository{pool: pool}
}

func (r *likeRepository) GetPostLike(ctx context.Context, postID, userID string) (*domain.LikeEdge, error) {
	const query = `SELECT id, post_id, user_id, created_at FROM post_likes WHERE post_id=$1 AND user_id=$2`
	var edge domain.LikeEdge
	if err := r.pool.QueryRow(ctx, query, postID, userID).Scan(&edge.ID, &edge.SubjectID, &edge.UserID, &edge.CreatedAt); err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *likeRepository) CreatePostLike(ctx context.Context, edge *domain.LikeEdge) error {
	const query = `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, edge.SubjectID, edge.UserID).Scan(&edge.ID, &edge.CreatedAt)
}

func (r *likeRepository) DeletePostLike(ctx context.Context, id string) error {
	const query = `DELETE FROM post_likes WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *likeRepository) GetCommentLike(ctx context.Context, commentID, userID string) (*domain.LikeEdge, error) {
	const query = `SELECT id, comment_id, user_id, created_at FROM comment_likes WHERE comment_id=$1 AND user_id=$2`
	var edge domain.LikeEdge
	if err := r.pool.QueryRow(ctx, query, commentID, userID).Scan(&edge.ID, &edge.SubjectID, &edge.UserID, &edge.CreatedAt); err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *likeRepository) CreateCommentLike(ctx context.Context, edge *domain.LikeEdge) error {
	const query = `INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, edge.SubjectID, edge.UserID).Scan(&edge.ID, &edge.CreatedAt)
}

func (r *likeRepository) DeleteCommentLike(ctx context.Context, id string) error {
	const query = `DELETE FROM comment_likes WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *likeRepository) ListLikedCommentIDs(ctx context.Context, userID string, commentIDs []string) ([]string, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT comment_id FROM comment_likes WHERE user_id=$1 AND comment_id = ANY($2)`
	rows, err := r.pool.Query(ctx, query, userID, commentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
