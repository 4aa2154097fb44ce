package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// RevokeToken adds a token's ID to the revocation list and drops entries
// that have expired anyway.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if jti == "" {
		return validationf("token id is required")
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, timestamp(expiresAt),
	); err != nil {
		return storageError("revoking token", err)
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, timestamp(now()),
	); err != nil {
		slog.Warn("pruning revoked tokens", "error", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token ID is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	revoked, err := exists(ctx, db, `SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti)
	if err != nil {
		return false, storageError("checking token revocation", err)
	}
	return revoked, nil
}
