package model

import "time"

// History action types.
const (
	ActionCreate      = "CREATE"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionZoneDeleted = "ZONE_DELETED"
)

// ValidAction reports whether action is a known history action type.
func ValidAction(action string) bool {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionZoneDeleted:
		return true
	}
	return false
}

// HistoryEntry is one immutable audit record: a single field change or a
// lifecycle event of an object or zone.
type HistoryEntry struct {
	ID               int64     `json:"id"`
	ZoneID           *int64    `json:"zone_id,omitempty"`
	ObjectID         *int64    `json:"object_id,omitempty"`
	ActionType       string    `json:"action_type"`
	FieldModified    string    `json:"field_modified,omitempty"`
	OldValue         *string   `json:"old_value,omitempty"`
	NewValue         *string   `json:"new_value,omitempty"`
	ModifiedAt       time.Time `json:"modification_date"`
	ModificationUser string    `json:"modification_user"`
	Comment          string    `json:"comment,omitempty"`

	// Joined fields (not always populated).
	ObjectName string `json:"object_name,omitempty"`
	ZoneName   string `json:"zone_name,omitempty"`
}

// HistoryFilter restricts history queries. From is inclusive, To is
// exclusive; zero values are ignored.
type HistoryFilter struct {
	ObjectID   int64     `json:"object_id,omitempty"`
	ZoneID     int64     `json:"zone_id,omitempty"`
	ActionType string    `json:"action_type,omitempty"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
}

// HistorySummary groups history entries of one zone and action type.
type HistorySummary struct {
	ZoneID     *int64    `json:"zone_id,omitempty"`
	ZoneName   string    `json:"zone_name,omitempty"`
	ActionType string    `json:"action_type"`
	Count      int       `json:"count"`
	LastChange time.Time `json:"last_change"`
	Objects    []string  `json:"objects"`
}
