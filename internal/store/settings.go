package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetJWTSecret returns the token signing secret, generating and storing one
// on first use. INSERT OR IGNORE followed by a read keeps concurrent
// starts on the same secret.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		hex.EncodeToString(buf),
	); err != nil {
		return "", storageError("storing jwt secret", err)
	}

	var secret string
	if err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret); err != nil {
		return "", storageError("reading jwt secret", err)
	}
	return secret, nil
}
