package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

const zoneSelect = `SELECT id, name, description, creation_user, creation_date,
        modification_user, modification_date, deletion_date, deletion_user
 FROM zones`

func scanZone(row rowScanner) (*model.Zone, error) {
	z := &model.Zone{}
	var description sql.NullString
	if err := row.Scan(&z.ID, &z.Name, &description, &z.CreationUser, &z.CreatedAt,
		&z.ModificationUser, &z.ModifiedAt, &z.DeletedAt, &z.DeletionUser); err != nil {
		return nil, err
	}
	z.Description = description.String
	return z, nil
}

func activeZoneNameTaken(ctx context.Context, q querier, name string, exceptID int64) (bool, error) {
	return exists(ctx, q,
		`SELECT 1 FROM zones WHERE name = ? AND id <> ? AND deletion_date IS NULL`, name, exceptID)
}

// CreateZone adds a zone. Names are unique among active zones.
func CreateZone(ctx context.Context, sqlDB *sql.DB, name, description, user string) (*model.Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("zone name is required")
	}
	user, err := requireUser(user)
	if err != nil {
		return nil, err
	}

	taken, err := activeZoneNameTaken(ctx, sqlDB, name, 0)
	if err != nil {
		return nil, storageError("checking zone name", err)
	}
	if taken {
		return nil, conflictf("zone %q already exists", name)
	}

	stamp := timestamp(now())
	result, err := sqlDB.ExecContext(ctx,
		`INSERT INTO zones (name, description, creation_user, creation_date, modification_user, modification_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, nullString(description), user, stamp, user, stamp,
	)
	if err != nil {
		return nil, storageError("creating zone", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("getting zone id", err)
	}

	return GetZone(ctx, sqlDB, id)
}

// GetZone returns an active zone by ID.
func GetZone(ctx context.Context, sqlDB *sql.DB, id int64) (*model.Zone, error) {
	z, err := scanZone(sqlDB.QueryRowContext(ctx, zoneSelect+` WHERE id = ? AND deletion_date IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("zone %d", id)
	}
	if err != nil {
		return nil, storageError("getting zone", err)
	}
	return z, nil
}

// ListZones returns all active zones ordered by ID.
func ListZones(ctx context.Context, sqlDB *sql.DB) ([]model.Zone, error) {
	rows, err := sqlDB.QueryContext(ctx, zoneSelect+` WHERE deletion_date IS NULL ORDER BY id`)
	if err != nil {
		return nil, storageError("listing zones", err)
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, storageError("scanning zone", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating zones", err)
	}
	return zones, nil
}

// UpdateZone renames an active zone and replaces its description.
func UpdateZone(ctx context.Context, sqlDB *sql.DB, id int64, name, description, user string) (*model.Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("zone name is required")
	}
	user, err := requireUser(user)
	if err != nil {
		return nil, err
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	taken, err := activeZoneNameTaken(ctx, tx, name, id)
	if err != nil {
		return nil, storageError("checking zone name", err)
	}
	if taken {
		return nil, conflictf("zone %q already exists", name)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE zones SET name = ?, description = ?, modification_user = ?, modification_date = ?
		 WHERE id = ? AND deletion_date IS NULL`,
		name, nullString(description), user, timestamp(now()), id,
	)
	if err != nil {
		return nil, storageError("updating zone", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, storageError("updating zone", err)
	} else if n == 0 {
		return nil, notFoundf("zone %d", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("committing zone update", err)
	}
	return GetZone(ctx, sqlDB, id)
}

// RemoveZone soft-deletes a zone that no active object references and
// records a ZONE_DELETED entry. The default zone cannot be removed.
func RemoveZone(ctx context.Context, sqlDB *sql.DB, id int64, user, comment string) error {
	user, err := requireUser(user)
	if err != nil {
		return err
	}
	if id == db.DefaultZoneID {
		return conflictf("the default zone cannot be removed")
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM zones WHERE id = ? AND deletion_date IS NULL`, id,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("zone %d", id)
	}
	if err != nil {
		return storageError("getting zone", err)
	}

	var active int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM objects WHERE zone_id = ? AND deletion_date IS NULL`, id,
	).Scan(&active); err != nil {
		return storageError("counting zone objects", err)
	}
	if active > 0 {
		return conflictf("zone %q still holds %d active objects", name, active)
	}

	stamp := now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE zones SET deletion_date = ?, deletion_user = ? WHERE id = ?`,
		timestamp(stamp), user, id,
	); err != nil {
		return storageError("removing zone", err)
	}

	if _, err := appendHistory(ctx, tx, model.HistoryEntry{
		ZoneID:           ptr(id),
		ActionType:       model.ActionZoneDeleted,
		FieldModified:    "zone",
		OldValue:         ptr(name),
		ModifiedAt:       stamp,
		ModificationUser: user,
		Comment:          comment,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing zone removal", err)
	}
	return nil
}
