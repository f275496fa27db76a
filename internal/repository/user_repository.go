package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pitstop/garage-bookings/internal/domain"
)

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByTrackingKey matches the key against the phone number or the
	// email column by equality.
	FindByTrackingKey(ctx context.Context, key string) (*domain.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userCols = `id, username, password_hash, fullname, phone_number, email, user_type, created_at`

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username = ?`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Email, &u.UserType, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &u, err
}

func (r *userRepository) FindByTrackingKey(ctx context.Context, key string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE phone_number = ? OR email = ?`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.db.QueryRowContext(ctx, q, key, key).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Email, &u.UserType, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &u, err
}
