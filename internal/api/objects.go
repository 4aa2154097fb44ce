package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/erazemk/inventar/internal/imaging"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// ObjectsHandler handles object endpoints.
type ObjectsHandler struct {
	DB *sql.DB
}

// createObjectRequest mirrors model.ObjectInput with price and quantity as
// pointers, so an omitted field is told apart from an explicit zero.
type createObjectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	CategoryID  int64            `json:"category_id"`
	ZoneID      int64            `json:"zone_id"`
	StatusID    int64            `json:"status_id"`
	Comment     string           `json:"comment"`
}

func (req createObjectRequest) input() (model.ObjectInput, error) {
	if req.Price == nil {
		return model.ObjectInput{}, errors.New("price is required")
	}
	if req.Quantity == nil {
		return model.ObjectInput{}, errors.New("quantity is required")
	}
	return model.ObjectInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		CategoryID:  req.CategoryID,
		ZoneID:      req.ZoneID,
		StatusID:    req.StatusID,
		Comment:     req.Comment,
	}, nil
}

type adjustRequest struct {
	Delta   int    `json:"delta"`
	Comment string `json:"comment"`
}

// objectFilter reads zone_id, category_id, status_id and include_deleted
// from the query string.
func objectFilter(r *http.Request) (model.ObjectFilter, error) {
	var filter model.ObjectFilter
	var err error
	if filter.ZoneID, err = queryID(r, "zone_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryID(r, "category_id"); err != nil {
		return filter, err
	}
	if filter.StatusID, err = queryID(r, "status_id"); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("include_deleted"); raw != "" {
		if filter.IncludeDeleted, err = strconv.ParseBool(raw); err != nil {
			return filter, errors.New("invalid include_deleted")
		}
	}
	return filter, nil
}

// List handles GET /api/objects.
func (h *ObjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := objectFilter(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	objects, err := store.ListObjects(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(objects))
}

// Create handles POST /api/objects.
func (h *ObjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createObjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	obj, err := store.CreateObject(r.Context(), h.DB, in, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("object created", "user", actingUser(r), "object", obj.ID, "zone", obj.ZoneID)
	jsonResponse(w, http.StatusCreated, obj)
}

// Get handles GET /api/objects/{id}.
func (h *ObjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	obj, err := store.GetObject(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, obj)
}

// Update handles PUT /api/objects/{id}. Only the fields present in the
// body are changed.
func (h *ObjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd model.ObjectUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if upd.Empty() {
		jsonError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := store.UpdateObject(r.Context(), h.DB, id, upd, actingUser(r)); err != nil {
		storeError(w, r, err)
		return
	}

	obj, err := store.GetObject(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("object updated", "user", actingUser(r), "object", id)
	jsonResponse(w, http.StatusOK, obj)
}

// Delete handles DELETE /api/objects/{id}.
func (h *ObjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.DeleteObject(r.Context(), h.DB, id, actingUser(r)); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("object deleted", "user", actingUser(r), "object", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "object deleted"})
}

// DeleteAll handles DELETE /api/objects. The same query filters as List
// select the objects; confirm=true is required.
func (h *ObjectsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		jsonError(w, http.StatusBadRequest, "bulk delete requires confirm=true")
		return
	}

	filter, err := objectFilter(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := store.DeleteObjects(r.Context(), h.DB, filter, actingUser(r))
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Warn("objects bulk deleted", "user", actingUser(r), "count", n,
		"zone", filter.ZoneID, "category", filter.CategoryID, "status", filter.StatusID)
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}

// Adjust handles POST /api/objects/{id}/adjust.
func (h *ObjectsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.AdjustQuantity(r.Context(), h.DB, id, req.Delta, actingUser(r), req.Comment); err != nil {
		storeError(w, r, err)
		return
	}

	obj, err := store.GetObject(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, obj)
}

// UploadImage handles PUT /api/objects/{id}/image with a multipart "image" file.
func (h *ObjectsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("processing image", "request_id", RequestID(r.Context()), "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	if err := store.SetObjectImage(r.Context(), h.DB, id, photo.Data, photo.MIME, actingUser(r)); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("object image uploaded", "user", actingUser(r), "object", id, "bytes", len(photo.Data))
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/objects/{id}/image.
func (h *ObjectsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, mime, err := store.GetObjectImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// GetHistory handles GET /api/objects/{id}/history.
func (h *ObjectsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := store.GetObject(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err)
		return
	}

	entries, err := store.QueryHistory(r.Context(), h.DB, model.HistoryFilter{ObjectID: id})
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(entries))
}
