package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails to compile if *Y doesn't implement X, so a
// missing method is caught here instead of at a distant call site.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The caller provides Name, Email, and
// PasswordHash; ID and timestamps are generated here.
//
// Returns apperror.ErrConflict when the email is already registered — the
// UNIQUE constraint on users.email is the source of truth for that rule.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "user already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User
	var resetExpires sql.NullTime

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, reset_token, reset_expires_at,
		        created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetToken,
		&resetExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	if resetExpires.Valid {
		user.ResetExpiresAt = resetExpires.Time
	}

	return &user, nil
}

// UpdateUser persists the mutable user fields: name, password hash, and the
// password-reset token pair. Email is immutable in this product.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	var resetExpires any
	if !user.ResetExpiresAt.IsZero() {
		resetExpires = user.ResetExpiresAt
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, password_hash = ?, reset_token = ?, reset_expires_at = ?,
		     updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.PasswordHash,
		user.ResetToken,
		resetExpires,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// error. modernc.org/sqlite doesn't export a typed error for this, so we
// match on the stable message prefix the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
