package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/forum-service/internal/domain"
)

// CommentRepository defines persistence access for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	UpdateLikeCount(ctx context.Context, id string, likeCount int64) error
	UpdateStatus(ctx context.Context, id string, status domain.CommentStatus) error
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `id, post_id, user_id, parent_id, content, like_count, status, created_at, updated_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (post_id, user_id, parent_id, content, like_count, status)
        VALUES ($1, $2, $3, $4, 0, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		comment.PostID,
		comment.UserID,
		comment.ParentID,
		comment.Content,
		comment.Status,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comments WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	const query = `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE post_id=$1 AND status=$2
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, postID, domain.CommentStatusNormal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *commentRepository) UpdateLikeCount(ctx context.Context, id string, likeCount int64) error {
	const query = `UPDATE comments SET like_count=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, likeCount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) UpdateStatus(ctx context.Context, id string, status domain.CommentStatus) error {
	const query = `UPDATE comments SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) scanOne(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.ParentID,
		&comment.Content,
		&comment.LikeCount,
		&comment.Status,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}
