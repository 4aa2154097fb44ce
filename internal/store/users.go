package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/inventar/internal/model"
)

const userSelect = `SELECT id, username, password_hash, role, created_at, deleted_at FROM users`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new API user.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationf("username is required")
	}
	if !model.ValidRole(role) {
		return nil, validationf("unknown role %q", role)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, role, timestamp(now()),
	)
	if err != nil {
		err = storageError("creating user", err)
		if errors.Is(err, ErrConflict) {
			return nil, conflictf("user %q already exists", username)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("getting user id", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("user %d", id)
	}
	if err != nil {
		return nil, storageError("getting user", err)
	}
	return u, nil
}

// GetUserByUsername returns the active user with the given username.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		userSelect+` WHERE username = ? AND deleted_at IS NULL`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("user %q", username)
	}
	if err != nil {
		return nil, storageError("getting user by username", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx, userSelect+` WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, storageError("listing users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageError("scanning user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating users", err)
	}
	return users, nil
}

// UpdateUserPassword replaces an active user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, username, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ? AND deleted_at IS NULL`,
		passwordHash, username,
	)
	if err != nil {
		return storageError("updating user password", err)
	}
	return requireAffected(result, "user %q", username)
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, username string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ? WHERE username = ? AND deleted_at IS NULL`,
		timestamp(now()), username,
	)
	if err != nil {
		return storageError("deleting user", err)
	}
	return requireAffected(result, "user %q", username)
}

// requireAffected turns an UPDATE that matched nothing into ErrNotFound.
func requireAffected(result sql.Result, format string, args ...any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storageError("counting affected rows", err)
	}
	if n == 0 {
		return notFoundf(format, args...)
	}
	return nil
}
