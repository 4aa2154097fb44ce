package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// ZonesHandler handles zone endpoints.
type ZonesHandler struct {
	DB *sql.DB
}

type zoneRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/zones.
func (h *ZonesHandler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := store.ListZones(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(zones))
}

// Create handles POST /api/zones.
func (h *ZonesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := store.CreateZone(r.Context(), h.DB, req.Name, req.Description, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("zone created", "user", actingUser(r), "zone", zone.ID, "name", zone.Name)
	jsonResponse(w, http.StatusCreated, zone)
}

// Get handles GET /api/zones/{id}.
func (h *ZonesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := store.GetZone(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, zone)
}

// Update handles PUT /api/zones/{id}.
func (h *ZonesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req zoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := store.UpdateZone(r.Context(), h.DB, id, req.Name, req.Description, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("zone updated", "user", actingUser(r), "zone", id)
	jsonResponse(w, http.StatusOK, zone)
}

// Remove handles DELETE /api/zones/{id}?comment=...
func (h *ZonesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment := r.URL.Query().Get("comment")
	if err := store.RemoveZone(r.Context(), h.DB, id, actingUser(r), comment); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("zone removed", "user", actingUser(r), "zone", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "zone removed"})
}

// Objects handles GET /api/zones/{id}/objects.
func (h *ZonesHandler) Objects(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := store.GetZone(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err)
		return
	}

	objects, err := store.ListObjects(r.Context(), h.DB, model.ObjectFilter{ZoneID: id})
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(objects))
}
