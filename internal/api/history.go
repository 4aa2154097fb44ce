package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// HistoryHandler handles the audit log endpoints.
type HistoryHandler struct {
	DB *sql.DB
}

// timeLayouts are the accepted forms of the from and to parameters.
var timeLayouts = []string{time.RFC3339, store.TimeLayout, time.DateOnly}

// ParseTime parses a date or timestamp in any of the accepted layouts.
// Values without a zone are taken as UTC.
func ParseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", raw)
}

func historyFilter(r *http.Request) (model.HistoryFilter, error) {
	var filter model.HistoryFilter
	var err error
	if filter.ObjectID, err = queryID(r, "object_id"); err != nil {
		return filter, err
	}
	if filter.ZoneID, err = queryID(r, "zone_id"); err != nil {
		return filter, err
	}
	filter.ActionType = r.URL.Query().Get("action")
	if raw := r.URL.Query().Get("from"); raw != "" {
		if filter.From, err = ParseTime(raw); err != nil {
			return filter, err
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if filter.To, err = ParseTime(raw); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

// List handles GET /api/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilter(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := store.QueryHistory(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(entries))
}

// Summary handles GET /api/history/summary.
func (h *HistoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := store.SummarizeHistory(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(summaries))
}
