package model

import "time"

// Zone is a physical location objects are kept in.
type Zone struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	CreationUser     string     `json:"creation_user"`
	CreatedAt        time.Time  `json:"creation_date"`
	ModificationUser string     `json:"modification_user"`
	ModifiedAt       time.Time  `json:"modification_date"`
	DeletedAt        *time.Time `json:"deletion_date,omitempty"`
	DeletionUser     *string    `json:"deletion_user,omitempty"`
}

// Category classifies objects.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CreationUser string    `json:"creation_user"`
	CreatedAt    time.Time `json:"creation_date"`
}

// Status is the operational state of an object.
type Status struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CreationUser string    `json:"creation_user"`
	CreatedAt    time.Time `json:"creation_date"`
}
