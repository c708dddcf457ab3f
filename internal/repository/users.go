// Package repository provides PostgreSQL persistence for users, password
// reset codes and the finance records owned by a user.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atinyakov/FinWise/internal/models"
)

const userColumns = `id, email, full_name, password_hash, provider, currency, created_at`

// PostgresUserRepository stores users and their reset codes.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository over db.
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts u. A taken email yields models.ErrUserExists.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, provider, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.FullName, u.PasswordHash, u.Provider, u.Currency, u.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by email.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUserByID looks a user up by ID.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateProfile sets the display name and currency of a user.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id, fullName, currency string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`UPDATE users SET full_name = $1, currency = $2 WHERE id = $3`,
		fullName, currency, id,
	))
}

// UpdatePassword replaces the password hash of the user with email.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	return expectOne(r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE email = $2`,
		hash, email,
	))
}

// DeleteUser removes a user; owned records go with it.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id string) error {
	return expectOne(r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

// SaveResetCode stores code for email, replacing any earlier one.
func (r *PostgresUserRepository) SaveResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO reset_codes (email, code, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`, email, code, expiresAt)
	if err != nil {
		return fmt.Errorf("SaveResetCode: %w", err)
	}
	return nil
}

// GetResetCode returns the pending reset code for email.
func (r *PostgresUserRepository) GetResetCode(ctx context.Context, email string) (*models.ResetCode, error) {
	var rc models.ResetCode
	err := r.DB.GetContext(ctx, &rc, `SELECT email, code, expires_at FROM reset_codes WHERE email = $1`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &rc, nil
}

// DeleteResetCode removes the reset code for email. Missing codes are not
// an error.
func (r *PostgresUserRepository) DeleteResetCode(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reset_codes WHERE email = $1`, email)
	return err
}
