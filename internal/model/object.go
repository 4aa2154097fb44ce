package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Object is an inventory item held in a zone.
type Object struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	CategoryID       int64           `json:"category_id"`
	ZoneID           int64           `json:"zone_id"`
	StatusID         int64           `json:"status_id"`
	CreationUser     string          `json:"creation_user"`
	ModificationUser string          `json:"modification_user"`
	CreatedAt        time.Time       `json:"creation_date"`
	ModifiedAt       time.Time       `json:"modification_date"`
	DeletedAt        *time.Time      `json:"deletion_date,omitempty"`
	DeletionUser     *string         `json:"deletion_user,omitempty"`
	ImageMime        string          `json:"image_mime,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	ZoneName     string `json:"zone_name,omitempty"`
	StatusName   string `json:"status_name,omitempty"`
}

// Active reports whether the object has not been soft-deleted.
func (o *Object) Active() bool {
	return o.DeletedAt == nil
}

// ObjectInput holds the fields supplied when creating an object.
type ObjectInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  int64           `json:"category_id"`
	ZoneID      int64           `json:"zone_id"`
	StatusID    int64           `json:"status_id"`
	Comment     string          `json:"comment,omitempty"`
}

// ObjectUpdate lists every field that may change after creation. Nil
// fields are left as they are.
type ObjectUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	ZoneID      *int64           `json:"zone_id,omitempty"`
	StatusID    *int64           `json:"status_id,omitempty"`
	Comment     string           `json:"comment,omitempty"`
}

// Empty reports whether the update sets no field.
func (u ObjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Quantity == nil &&
		u.CategoryID == nil && u.ZoneID == nil && u.StatusID == nil
}

// ObjectFilter restricts object listings. Zero ids match everything.
type ObjectFilter struct {
	ZoneID         int64 `json:"zone_id,omitempty"`
	CategoryID     int64 `json:"category_id,omitempty"`
	StatusID       int64 `json:"status_id,omitempty"`
	IncludeDeleted bool  `json:"include_deleted,omitempty"`
}

// Updatable object fields, as recorded in history.field_modified.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldQuantity    = "quantity"
	FieldCategoryID  = "category_id"
	FieldZoneID      = "zone_id"
	FieldStatusID    = "status_id"
	FieldImage       = "image"
)
