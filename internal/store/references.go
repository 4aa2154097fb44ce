package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/erazemk/inventar/internal/model"
)

// lookup is a row of one of the flat reference tables.
type lookup struct {
	id           int64
	name         string
	description  string
	creationUser string
	createdAt    time.Time
}

// Reference tables sharing the lookup layout.
const (
	tableCategories = "categories"
	tableStatuses   = "statuses"
)

var lookupKinds = map[string]string{
	tableCategories: "category",
	tableStatuses:   "status",
}

func createLookup(ctx context.Context, db *sql.DB, table, name, description, user string) (*lookup, error) {
	kind := lookupKinds[table]
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("%s name is required", kind)
	}
	user, err := requireUser(user)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (name, description, creation_user, creation_date) VALUES (?, ?, ?, ?)`,
		name, nullString(description), user, timestamp(now()),
	)
	if err != nil {
		err = storageError("creating "+kind, err)
		if errors.Is(err, ErrConflict) {
			return nil, conflictf("%s %q already exists", kind, name)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("getting "+kind+" id", err)
	}
	return getLookup(ctx, db, table, id)
}

func scanLookup(row rowScanner) (*lookup, error) {
	l := &lookup{}
	var description sql.NullString
	if err := row.Scan(&l.id, &l.name, &description, &l.creationUser, &l.createdAt); err != nil {
		return nil, err
	}
	l.description = description.String
	return l, nil
}

func getLookup(ctx context.Context, db *sql.DB, table string, id int64) (*lookup, error) {
	l, err := scanLookup(db.QueryRowContext(ctx,
		`SELECT id, name, description, creation_user, creation_date FROM `+table+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("%s %d", lookupKinds[table], id)
	}
	if err != nil {
		return nil, storageError("getting "+lookupKinds[table], err)
	}
	return l, nil
}

func listLookups(ctx context.Context, db *sql.DB, table string) ([]lookup, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, creation_user, creation_date FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, storageError("listing "+table, err)
	}
	defer rows.Close()

	var lookups []lookup
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, storageError("scanning "+lookupKinds[table], err)
		}
		lookups = append(lookups, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating "+table, err)
	}
	return lookups, nil
}

func (l *lookup) category() *model.Category {
	return &model.Category{
		ID: l.id, Name: l.name, Description: l.description,
		CreationUser: l.creationUser, CreatedAt: l.createdAt,
	}
}

func (l *lookup) status() *model.Status {
	return &model.Status{
		ID: l.id, Name: l.name, Description: l.description,
		CreationUser: l.creationUser, CreatedAt: l.createdAt,
	}
}

// CreateCategory adds a category with a unique name.
func CreateCategory(ctx context.Context, db *sql.DB, name, description, user string) (*model.Category, error) {
	l, err := createLookup(ctx, db, tableCategories, name, description, user)
	if err != nil {
		return nil, err
	}
	return l.category(), nil
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	l, err := getLookup(ctx, db, tableCategories, id)
	if err != nil {
		return nil, err
	}
	return l.category(), nil
}

// ListCategories returns all categories ordered by ID.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	lookups, err := listLookups(ctx, db, tableCategories)
	if err != nil {
		return nil, err
	}
	categories := make([]model.Category, 0, len(lookups))
	for i := range lookups {
		categories = append(categories, *lookups[i].category())
	}
	return categories, nil
}

// CreateStatus adds a status with a unique name.
func CreateStatus(ctx context.Context, db *sql.DB, name, description, user string) (*model.Status, error) {
	l, err := createLookup(ctx, db, tableStatuses, name, description, user)
	if err != nil {
		return nil, err
	}
	return l.status(), nil
}

// GetStatus returns a status by ID.
func GetStatus(ctx context.Context, db *sql.DB, id int64) (*model.Status, error) {
	l, err := getLookup(ctx, db, tableStatuses, id)
	if err != nil {
		return nil, err
	}
	return l.status(), nil
}

// ListStatuses returns all statuses ordered by ID.
func ListStatuses(ctx context.Context, db *sql.DB) ([]model.Status, error) {
	lookups, err := listLookups(ctx, db, tableStatuses)
	if err != nil {
		return nil, err
	}
	statuses := make([]model.Status, 0, len(lookups))
	for i := range lookups {
		statuses = append(statuses, *lookups[i].status())
	}
	return statuses, nil
}
