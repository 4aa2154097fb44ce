package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS zones (
    id                INTEGER PRIMARY KEY,
    name              TEXT NOT NULL,
    description       TEXT,
    creation_user     TEXT NOT NULL DEFAULT 'system',
    creation_date     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modification_user TEXT NOT NULL DEFAULT 'system',
    modification_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deletion_date     DATETIME,
    deletion_user     TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_zones_name_active
    ON zones(name) WHERE deletion_date IS NULL;

CREATE TABLE IF NOT EXISTS categories (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    description   TEXT,
    creation_user TEXT NOT NULL DEFAULT 'system',
    creation_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS statuses (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    description   TEXT,
    creation_user TEXT NOT NULL DEFAULT 'system',
    creation_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS objects (
    id                INTEGER PRIMARY KEY,
    name              TEXT NOT NULL CHECK (name <> ''),
    description       TEXT,
    price             TEXT    NOT NULL DEFAULT '0' CHECK (CAST(price AS REAL) >= 0),
    quantity          INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    category_id       INTEGER NOT NULL REFERENCES categories(id),
    zone_id           INTEGER NOT NULL REFERENCES zones(id),
    status_id         INTEGER NOT NULL REFERENCES statuses(id),
    creation_user     TEXT NOT NULL,
    modification_user TEXT NOT NULL,
    creation_date     DATETIME NOT NULL,
    modification_date DATETIME NOT NULL,
    deletion_date     DATETIME,
    deletion_user     TEXT,
    image             BLOB,
    image_mime        TEXT
);

CREATE INDEX IF NOT EXISTS idx_objects_zone ON objects(zone_id) WHERE deletion_date IS NULL;
CREATE INDEX IF NOT EXISTS idx_objects_category ON objects(category_id) WHERE deletion_date IS NULL;
CREATE INDEX IF NOT EXISTS idx_objects_status ON objects(status_id) WHERE deletion_date IS NULL;

CREATE TABLE IF NOT EXISTS history (
    id                INTEGER PRIMARY KEY,
    zone_id           INTEGER REFERENCES zones(id),
    object_id         INTEGER REFERENCES objects(id),
    action_type       TEXT NOT NULL CHECK (action_type IN ('CREATE', 'UPDATE', 'DELETE', 'ZONE_DELETED')),
    field_modified    TEXT,
    old_value         TEXT,
    new_value         TEXT,
    modification_date DATETIME NOT NULL,
    modification_user TEXT NOT NULL,
    comment           TEXT
);

CREATE INDEX IF NOT EXISTS idx_history_object ON history(object_id);
CREATE INDEX IF NOT EXISTS idx_history_zone ON history(zone_id);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Init prepares a store for use: it ensures the schema and seeds the
// reference tables. It is safe to call on every start.
func Init(ctx context.Context, db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}
	return Seed(ctx, db)
}
