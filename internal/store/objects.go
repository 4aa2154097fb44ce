package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/inventar/internal/model"
)

const objectSelect = `SELECT o.id, o.name, o.description, o.price, o.quantity,
        o.category_id, o.zone_id, o.status_id,
        o.creation_user, o.modification_user, o.creation_date, o.modification_date,
        o.deletion_date, o.deletion_user, o.image_mime,
        c.name, z.name, s.name
 FROM objects o
 JOIN categories c ON c.id = o.category_id
 JOIN zones z ON z.id = o.zone_id
 JOIN statuses s ON s.id = o.status_id`

func scanObject(row rowScanner) (*model.Object, error) {
	o := &model.Object{}
	var description, imageMime sql.NullString
	err := row.Scan(&o.ID, &o.Name, &description, &o.Price, &o.Quantity,
		&o.CategoryID, &o.ZoneID, &o.StatusID,
		&o.CreationUser, &o.ModificationUser, &o.CreatedAt, &o.ModifiedAt,
		&o.DeletedAt, &o.DeletionUser, &imageMime,
		&o.CategoryName, &o.ZoneName, &o.StatusName)
	if err != nil {
		return nil, err
	}
	o.Description = description.String
	o.ImageMime = imageMime.String
	return o, nil
}

func validateObjectInput(in model.ObjectInput) error {
	if in.Name == "" {
		return validationf("object name is required")
	}
	if in.Price.IsNegative() {
		return validationf("price must not be negative")
	}
	if in.Quantity < 0 {
		return validationf("quantity must not be negative")
	}
	if in.CategoryID <= 0 {
		return validationf("category_id is required")
	}
	if in.ZoneID <= 0 {
		return validationf("zone_id is required")
	}
	if in.StatusID <= 0 {
		return validationf("status_id is required")
	}
	return nil
}

// checkReferences verifies that every non-zero id points at an existing
// row. Zones must also be active.
func checkReferences(ctx context.Context, q querier, categoryID, zoneID, statusID int64) error {
	checks := []struct {
		id    int64
		kind  string
		query string
	}{
		{categoryID, "category", `SELECT 1 FROM categories WHERE id = ?`},
		{zoneID, "zone", `SELECT 1 FROM zones WHERE id = ? AND deletion_date IS NULL`},
		{statusID, "status", `SELECT 1 FROM statuses WHERE id = ?`},
	}

	for _, check := range checks {
		if check.id == 0 {
			continue
		}
		ok, err := exists(ctx, q, check.query, check.id)
		if err != nil {
			return storageError("checking "+check.kind, err)
		}
		if !ok {
			return validationf("%s %d does not exist", check.kind, check.id)
		}
	}
	return nil
}

// CreateObject stores a new object and its CREATE history entry.
func CreateObject(ctx context.Context, db *sql.DB, in model.ObjectInput, user string) (*model.Object, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateObjectInput(in); err != nil {
		return nil, err
	}
	user, err := requireUser(user)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := checkReferences(ctx, tx, in.CategoryID, in.ZoneID, in.StatusID); err != nil {
		return nil, err
	}

	stamp := now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO objects
		 (name, description, price, quantity, category_id, zone_id, status_id,
		  creation_user, modification_user, creation_date, modification_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Description), in.Price, in.Quantity, in.CategoryID, in.ZoneID, in.StatusID,
		user, user, timestamp(stamp), timestamp(stamp),
	)
	if err != nil {
		return nil, storageError("creating object", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("getting object id", err)
	}

	if _, err := appendHistory(ctx, tx, model.HistoryEntry{
		ZoneID:           ptr(in.ZoneID),
		ObjectID:         ptr(id),
		ActionType:       model.ActionCreate,
		NewValue:         ptr(in.Name),
		ModifiedAt:       stamp,
		ModificationUser: user,
		Comment:          in.Comment,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("committing object", err)
	}

	return GetObject(ctx, db, id)
}

// GetObject returns an object by ID, including soft-deleted ones.
func GetObject(ctx context.Context, db *sql.DB, id int64) (*model.Object, error) {
	return getObject(ctx, db, id)
}

func getObject(ctx context.Context, q querier, id int64) (*model.Object, error) {
	o, err := scanObject(q.QueryRowContext(ctx, objectSelect+` WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("object %d", id)
	}
	if err != nil {
		return nil, storageError("getting object", err)
	}
	return o, nil
}

// ListObjects returns objects matching filter ordered by ID.
func ListObjects(ctx context.Context, db *sql.DB, filter model.ObjectFilter) ([]model.Object, error) {
	where, args := objectWhere(filter)

	rows, err := db.QueryContext(ctx, objectSelect+" "+where+" ORDER BY o.id", args...)
	if err != nil {
		return nil, storageError("listing objects", err)
	}
	defer rows.Close()

	var objects []model.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, storageError("scanning object", err)
		}
		objects = append(objects, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating objects", err)
	}
	return objects, nil
}

func objectWhere(filter model.ObjectFilter) (string, []any) {
	where := "WHERE 1=1"
	var args []any

	if !filter.IncludeDeleted {
		where += " AND o.deletion_date IS NULL"
	}
	if filter.ZoneID > 0 {
		where += " AND o.zone_id = ?"
		args = append(args, filter.ZoneID)
	}
	if filter.CategoryID > 0 {
		where += " AND o.category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.StatusID > 0 {
		where += " AND o.status_id = ?"
		args = append(args, filter.StatusID)
	}
	return where, args
}

// fieldChange is one differing field of an update. field doubles as the
// column name.
type fieldChange struct {
	field    string
	oldValue string
	newValue string
	value    any
}

func validateObjectUpdate(upd *model.ObjectUpdate) error {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return validationf("object name must not be empty")
		}
		upd.Name = &name
	}
	if upd.Price != nil && upd.Price.IsNegative() {
		return validationf("price must not be negative")
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		return validationf("quantity must not be negative")
	}
	for field, id := range map[string]*int64{
		model.FieldCategoryID: upd.CategoryID,
		model.FieldZoneID:     upd.ZoneID,
		model.FieldStatusID:   upd.StatusID,
	} {
		if id != nil && *id <= 0 {
			return validationf("%s must be positive", field)
		}
	}
	return nil
}

func diffObject(cur *model.Object, upd model.ObjectUpdate) []fieldChange {
	var changes []fieldChange

	if upd.Name != nil && *upd.Name != cur.Name {
		changes = append(changes, fieldChange{model.FieldName, cur.Name, *upd.Name, *upd.Name})
	}
	if upd.Description != nil && *upd.Description != cur.Description {
		changes = append(changes, fieldChange{model.FieldDescription, cur.Description, *upd.Description, nullString(*upd.Description)})
	}
	if upd.Price != nil && !upd.Price.Equal(cur.Price) {
		changes = append(changes, fieldChange{model.FieldPrice, cur.Price.String(), upd.Price.String(), *upd.Price})
	}
	if upd.Quantity != nil && *upd.Quantity != cur.Quantity {
		changes = append(changes, fieldChange{model.FieldQuantity, strconv.Itoa(cur.Quantity), strconv.Itoa(*upd.Quantity), *upd.Quantity})
	}
	changes = appendIDChange(changes, model.FieldCategoryID, cur.CategoryID, upd.CategoryID)
	changes = appendIDChange(changes, model.FieldZoneID, cur.ZoneID, upd.ZoneID)
	changes = appendIDChange(changes, model.FieldStatusID, cur.StatusID, upd.StatusID)

	return changes
}

func appendIDChange(changes []fieldChange, field string, current int64, next *int64) []fieldChange {
	if next == nil || *next == current {
		return changes
	}
	return append(changes, fieldChange{
		field:    field,
		oldValue: strconv.FormatInt(current, 10),
		newValue: strconv.FormatInt(*next, 10),
		value:    *next,
	})
}

// UpdateObject applies upd to an active object. Each changed field gets its
// own UPDATE history entry; unchanged fields are ignored.
func UpdateObject(ctx context.Context, db *sql.DB, id int64, upd model.ObjectUpdate, user string) error {
	if err := validateObjectUpdate(&upd); err != nil {
		return err
	}
	return updateObject(ctx, db, id, user, func(*model.Object) (model.ObjectUpdate, error) {
		return upd, nil
	})
}

// updateObject reads the active object inside the write transaction and
// applies the update that build derives from it, so updates computed from
// the current row cannot race.
func updateObject(ctx context.Context, db *sql.DB, id int64, user string, build func(cur *model.Object) (model.ObjectUpdate, error)) error {
	user, err := requireUser(user)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	current, err := getObject(ctx, tx, id)
	if err != nil {
		return err
	}
	if !current.Active() {
		return notFoundf("object %d is deleted", id)
	}

	upd, err := build(current)
	if err != nil {
		return err
	}
	if err := validateObjectUpdate(&upd); err != nil {
		return err
	}

	changes := diffObject(current, upd)
	if len(changes) == 0 {
		return nil
	}

	var categoryID, zoneID, statusID int64
	for _, c := range changes {
		switch c.field {
		case model.FieldCategoryID:
			categoryID = c.value.(int64)
		case model.FieldZoneID:
			zoneID = c.value.(int64)
		case model.FieldStatusID:
			statusID = c.value.(int64)
		}
	}
	if err := checkReferences(ctx, tx, categoryID, zoneID, statusID); err != nil {
		return err
	}

	stamp := now()
	sets := make([]string, 0, len(changes)+2)
	args := make([]any, 0, len(changes)+3)
	for _, c := range changes {
		sets = append(sets, c.field+" = ?")
		args = append(args, c.value)
	}
	sets = append(sets, "modification_user = ?", "modification_date = ?")
	args = append(args, user, timestamp(stamp), id)

	if _, err := tx.ExecContext(ctx,
		`UPDATE objects SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deletion_date IS NULL`,
		args...,
	); err != nil {
		return storageError("updating object", err)
	}

	for _, c := range changes {
		if _, err := appendHistory(ctx, tx, model.HistoryEntry{
			ZoneID:           ptr(current.ZoneID),
			ObjectID:         ptr(id),
			ActionType:       model.ActionUpdate,
			FieldModified:    c.field,
			OldValue:         ptr(c.oldValue),
			NewValue:         ptr(c.newValue),
			ModifiedAt:       stamp,
			ModificationUser: user,
			Comment:          upd.Comment,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing object update", err)
	}
	return nil
}

// DeleteObject soft-deletes an active object and records a DELETE entry.
func DeleteObject(ctx context.Context, db *sql.DB, id int64, user string) error {
	user, err := requireUser(user)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	var zoneID int64
	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT zone_id, name FROM objects WHERE id = ? AND deletion_date IS NULL`, id,
	).Scan(&zoneID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("object %d not found or already deleted", id)
	}
	if err != nil {
		return storageError("getting object", err)
	}

	if err := softDeleteObject(ctx, tx, id, zoneID, name, user, now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing object deletion", err)
	}
	return nil
}

func softDeleteObject(ctx context.Context, tx *sql.Tx, id, zoneID int64, name, user string, stamp time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE objects SET deletion_date = ?, deletion_user = ? WHERE id = ? AND deletion_date IS NULL`,
		timestamp(stamp), user, id,
	); err != nil {
		return storageError("deleting object", err)
	}

	_, err := appendHistory(ctx, tx, model.HistoryEntry{
		ZoneID:           ptr(zoneID),
		ObjectID:         ptr(id),
		ActionType:       model.ActionDelete,
		OldValue:         ptr(name),
		ModifiedAt:       stamp,
		ModificationUser: user,
	})
	return err
}

// DeleteObjects soft-deletes every active object matching filter and
// returns how many were deleted.
func DeleteObjects(ctx context.Context, db *sql.DB, filter model.ObjectFilter, user string) (int, error) {
	user, err := requireUser(user)
	if err != nil {
		return 0, err
	}
	filter.IncludeDeleted = false
	where, args := objectWhere(filter)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT o.id, o.zone_id, o.name FROM objects o `+where+` ORDER BY o.id`, args...)
	if err != nil {
		return 0, storageError("selecting objects", err)
	}

	type target struct {
		id, zoneID int64
		name       string
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.id, &t.zoneID, &t.name); err != nil {
			rows.Close()
			return 0, storageError("scanning object", err)
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, storageError("iterating objects", err)
	}

	stamp := now()
	for _, t := range targets {
		if err := softDeleteObject(ctx, tx, t.id, t.zoneID, t.name, user, stamp); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageError("committing bulk deletion", err)
	}
	return len(targets), nil
}

// SetObjectImage stores a processed photo on an active object.
func SetObjectImage(ctx context.Context, db *sql.DB, id int64, data []byte, mime, user string) error {
	if len(data) == 0 {
		return validationf("image is empty")
	}
	if mime == "" {
		return validationf("image content type is required")
	}
	user, err := requireUser(user)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	var zoneID int64
	var oldMime sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT zone_id, image_mime FROM objects WHERE id = ? AND deletion_date IS NULL`, id,
	).Scan(&zoneID, &oldMime)
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("object %d", id)
	}
	if err != nil {
		return storageError("getting object", err)
	}

	stamp := now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE objects SET image = ?, image_mime = ?, modification_user = ?, modification_date = ?
		 WHERE id = ?`,
		data, mime, user, timestamp(stamp), id,
	); err != nil {
		return storageError("storing image", err)
	}

	entry := model.HistoryEntry{
		ZoneID:           ptr(zoneID),
		ObjectID:         ptr(id),
		ActionType:       model.ActionUpdate,
		FieldModified:    model.FieldImage,
		NewValue:         ptr(mime),
		ModifiedAt:       stamp,
		ModificationUser: user,
	}
	if oldMime.Valid {
		entry.OldValue = ptr(oldMime.String)
	}
	if _, err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing image", err)
	}
	return nil
}

// GetObjectImage returns the stored photo of an object and its MIME type.
func GetObjectImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM objects WHERE id = ?`, id,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", notFoundf("object %d", id)
	}
	if err != nil {
		return nil, "", storageError("getting image", err)
	}
	if len(data) == 0 {
		return nil, "", notFoundf("object %d has no image", id)
	}
	return data, mime.String, nil
}
