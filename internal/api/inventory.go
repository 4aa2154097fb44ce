package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/inventar/internal/store"
)

// InventoryHandler serves the per-zone stock overview.
type InventoryHandler struct {
	DB *sql.DB
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := store.ListInventory(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(zones))
}
