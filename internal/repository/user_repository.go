package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/forum-service/internal/domain"
)

// UserRepository defines persistence access for forum members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	ListByAuthStatus(ctx context.Context, status domain.AuthStatus, limit, offset int) ([]*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, phone, nickname, password_hash, student_id, campus_card_url, auth_status, role, is_muted, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (phone, nickname, password_hash, student_id, campus_card_url, auth_status, role, is_muted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Phone,
		user.Nickname,
		user.PasswordHash,
		user.StudentID,
		user.CampusCardURL,
		user.AuthStatus,
		user.Role,
		user.IsMuted,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET nickname=$1, password_hash=$2, student_id=$3, campus_card_url=$4,
            auth_status=$5, role=$6, is_muted=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.Nickname,
		user.PasswordHash,
		user.StudentID,
		user.CampusCardURL,
		user.AuthStatus,
		user.Role,
		user.IsMuted,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE phone=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone))
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) ListByAuthStatus(ctx context.Context, status domain.AuthStatus, limit, offset int) ([]*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users WHERE auth_status=$1
        ORDER BY created_at ASC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Phone,
		&user.Nickname,
		&user.PasswordHash,
		&user.StudentID,
		&user.CampusCardURL,
		&user.AuthStatus,
		&user.Role,
		&user.IsMuted,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
