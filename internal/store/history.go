package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/inventar/internal/model"
)

// objectNameSeparator splits the GROUP_CONCAT list in SummarizeHistory.
const objectNameSeparator = "\x1f"

// AppendHistory records one audit entry. ModifiedAt defaults to now.
func AppendHistory(ctx context.Context, db *sql.DB, entry model.HistoryEntry) (*model.HistoryEntry, error) {
	id, err := appendHistory(ctx, db, entry)
	if err != nil {
		return nil, err
	}

	entries, err := queryHistory(ctx, db, `WHERE h.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, notFoundf("history entry %d", id)
	}
	return &entries[0], nil
}

// appendHistory inserts an entry through q, which may be an open transaction.
func appendHistory(ctx context.Context, q querier, entry model.HistoryEntry) (int64, error) {
	if !model.ValidAction(entry.ActionType) {
		return 0, validationf("unknown history action %q", entry.ActionType)
	}
	user, err := requireUser(entry.ModificationUser)
	if err != nil {
		return 0, err
	}
	if entry.ModifiedAt.IsZero() {
		entry.ModifiedAt = now()
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO history
		 (zone_id, object_id, action_type, field_modified, old_value, new_value,
		  modification_date, modification_user, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deref(entry.ZoneID), deref(entry.ObjectID), entry.ActionType, nullString(entry.FieldModified),
		deref(entry.OldValue), deref(entry.NewValue), timestamp(entry.ModifiedAt), user, nullString(entry.Comment),
	)
	if err != nil {
		return 0, storageError("appending history", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageError("getting history id", err)
	}
	return id, nil
}

// QueryHistory returns entries matching filter, oldest first.
func QueryHistory(ctx context.Context, db *sql.DB, filter model.HistoryFilter) ([]model.HistoryEntry, error) {
	if filter.ActionType != "" && !model.ValidAction(filter.ActionType) {
		return nil, validationf("unknown history action %q", filter.ActionType)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, validationf("history range start must be before its end")
	}

	where := "WHERE 1=1"
	var args []any

	if filter.ObjectID > 0 {
		where += " AND h.object_id = ?"
		args = append(args, filter.ObjectID)
	}
	if filter.ZoneID > 0 {
		where += " AND h.zone_id = ?"
		args = append(args, filter.ZoneID)
	}
	if filter.ActionType != "" {
		where += " AND h.action_type = ?"
		args = append(args, filter.ActionType)
	}
	if !filter.From.IsZero() {
		where += " AND h.modification_date >= ?"
		args = append(args, timestamp(filter.From))
	}
	if !filter.To.IsZero() {
		where += " AND h.modification_date < ?"
		args = append(args, timestamp(filter.To))
	}

	return queryHistory(ctx, db, where, args...)
}

func queryHistory(ctx context.Context, q querier, where string, args ...any) ([]model.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT h.id, h.zone_id, h.object_id, h.action_type, h.field_modified, h.old_value, h.new_value,
		        h.modification_date, h.modification_user, h.comment,
		        COALESCE(o.name, ''), COALESCE(z.name, '')
		 FROM history h
		 LEFT JOIN objects o ON o.id = h.object_id
		 LEFT JOIN zones z ON z.id = h.zone_id
		 `+where+`
		 ORDER BY h.id`, args...,
	)
	if err != nil {
		return nil, storageError("querying history", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var field, comment sql.NullString
		if err := rows.Scan(&e.ID, &e.ZoneID, &e.ObjectID, &e.ActionType, &field, &e.OldValue, &e.NewValue,
			&e.ModifiedAt, &e.ModificationUser, &comment, &e.ObjectName, &e.ZoneName); err != nil {
			return nil, storageError("scanning history entry", err)
		}
		e.FieldModified = field.String
		e.Comment = comment.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating history", err)
	}
	return entries, nil
}

// SummarizeHistory groups the log by zone and action type.
func SummarizeHistory(ctx context.Context, db *sql.DB) ([]model.HistorySummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.zone_id, COALESCE(z.name, ''), h.action_type, COUNT(*), MAX(h.modification_date),
		        COALESCE(GROUP_CONCAT(o.name, char(31)), '')
		 FROM history h
		 LEFT JOIN zones z ON z.id = h.zone_id
		 LEFT JOIN objects o ON o.id = h.object_id
		 GROUP BY h.zone_id, h.action_type
		 ORDER BY h.zone_id, h.action_type`,
	)
	if err != nil {
		return nil, storageError("summarizing history", err)
	}
	defer rows.Close()

	var summaries []model.HistorySummary
	for rows.Next() {
		var s model.HistorySummary
		var lastChange, names string
		if err := rows.Scan(&s.ZoneID, &s.ZoneName, &s.ActionType, &s.Count, &lastChange, &names); err != nil {
			return nil, storageError("scanning history summary", err)
		}
		if s.LastChange, err = parseTimestamp(lastChange); err != nil {
			return nil, storageError("scanning history summary", err)
		}
		s.Objects = distinctNames(names)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating history summary", err)
	}
	return summaries, nil
}

// distinctNames splits a concatenated name list, keeping first occurrences.
func distinctNames(concatenated string) []string {
	names := []string{}
	if concatenated == "" {
		return names
	}
	seen := make(map[string]bool)
	for _, name := range strings.Split(concatenated, objectNameSeparator) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
