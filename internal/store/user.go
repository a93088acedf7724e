package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/todostack/apiserver/types"
)

// Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a new user. A duplicate email yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateRole sets the role of the user in a single conditional update.
// An unknown id yields ErrNotFound.
func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	const query = `
		UPDATE users
		SET role = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithTodoCounts returns every user joined with aggregate todo counts.
func (r *UserRepository) ListWithTodoCounts(ctx context.Context) ([]types.UserWithTodoCounts, error) {
	const query = `
		SELECT u.id, u.email, u.name, u.role, u.password_hash, u.created_at, u.updated_at,
			COUNT(t.id) AS total_todos,
			COUNT(t.id) FILTER (WHERE t.completed) AS completed_todos
		FROM users u
		LEFT JOIN todos t ON t.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.UserWithTodoCounts, 0)
	for rows.Next() {
		var row types.UserWithTodoCounts
		if err := rows.Scan(
			&row.ID,
			&row.Email,
			&row.Name,
			&row.Role,
			&row.PasswordHash,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.TotalTodos,
			&row.CompletedTodos,
		); err != nil {
			return nil, err
		}
		users = append(users, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByRole returns the total number of users and how many of them
// are administrators.
func (r *UserRepository) CountByRole(ctx context.Context) (total, admins int, err error) {
	const query = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE role = 'admin')
		FROM users`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &admins); err != nil {
		return 0, 0, err
	}
	return total, admins, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}
