package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/forum-service/internal/domain"
)

// PostRepository defines persistence access for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Post, error)
	List(ctx context.Context, categoryID *string, limit, offset int) ([]*domain.Post, error)
	Search(ctx context.Context, keyword string, categoryID *string, limit, offset int) ([]*domain.Post, error)
	ListHot(ctx context.Context, limit int) ([]*domain.Post, error)
	UpdateViewStats(ctx context.Context, id string, viewCount int64, hotScore float64) error
	UpdateLikeStats(ctx context.Context, id string, likeCount int64, hotScore float64) error
	UpdateStatus(ctx context.Context, id string, status domain.PostStatus) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository returns a Postgres-backed implementation.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `id, title, content, category_id, author_id, contact_info, view_count, like_count, hot_score, status, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (title, content, category_id, author_id, contact_info, view_count, like_count, hot_score, status)
        VALUES ($1, $2, $3, $4, $5, 0, 0, 0, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.CategoryID,
		post.AuthorID,
		post.ContactInfo,
		post.Status,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *postRepository) List(ctx context.Context, categoryID *string, limit, offset int) ([]*domain.Post, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts
        WHERE status=$1 AND ($2::uuid IS NULL OR category_id=$2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, domain.PostStatusNormal, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *postRepository) Search(ctx context.Context, keyword string, categoryID *string, limit, offset int) ([]*domain.Post, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts
        WHERE status=$1
          AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
          AND ($3::uuid IS NULL OR category_id=$3)
        ORDER BY created_at DESC
        LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, domain.PostStatusNormal, keyword, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *postRepository) ListHot(ctx context.Context, limit int) ([]*domain.Post, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM posts
        WHERE status=$1
        ORDER BY hot_score DESC, created_at DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.PostStatusNormal, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *postRepository) UpdateViewStats(ctx context.Context, id string, viewCount int64, hotScore float64) error {
	const query = `UPDATE posts SET view_count=$1, hot_score=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, viewCount, hotScore, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) UpdateLikeStats(ctx context.Context, id string, likeCount int64, hotScore float64) error {
	const query = `UPDATE posts SET like_count=$1, hot_score=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, likeCount, hotScore, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id string, status domain.PostStatus) error {
	const query = `UPDATE posts SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *postRepository) scanOne(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.CategoryID,
		&post.AuthorID,
		&post.ContactInfo,
		&post.ViewCount,
		&post.LikeCount,
		&post.HotScore,
		&post.Status,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) scanMany(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		post, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
