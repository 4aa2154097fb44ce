package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventar/internal/store"
)

type referenceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(categories))
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, req.Name, req.Description, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("category created", "user", actingUser(r), "name", category.Name)
	jsonResponse(w, http.StatusCreated, category)
}

// Get handles GET /api/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, category)
}

// StatusesHandler handles status endpoints.
type StatusesHandler struct {
	DB *sql.DB
}

// List handles GET /api/statuses.
func (h *StatusesHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := store.ListStatuses(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(statuses))
}

// Create handles POST /api/statuses.
func (h *StatusesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := store.CreateStatus(r.Context(), h.DB, req.Name, req.Description, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("status created", "user", actingUser(r), "name", status.Name)
	jsonResponse(w, http.StatusCreated, status)
}

// Get handles GET /api/statuses/{id}.
func (h *StatusesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := store.GetStatus(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, status)
}
