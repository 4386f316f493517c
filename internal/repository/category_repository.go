package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/forum-service/internal/domain"
)

// CategoryRepository defines persistence access for post categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, name, is_active, created_at FROM post_categories WHERE id=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.IsActive, &category.CreatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	const query = `SELECT id, name, is_active, created_at FROM post_categories WHERE is_active ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}
