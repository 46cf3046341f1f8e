package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// UserRepo is a PostgreSQL implementation of the repository.UserRepository interface
type UserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepo
func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, full_name, password_hash, created_at, updated_at`

// Create creates a new user in the database
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, full_name, password_hash)
			  VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.FullName,
		user.PassHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID gets a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail gets a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PassHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, notFound("user", err)
	}

	return user, nil
}
