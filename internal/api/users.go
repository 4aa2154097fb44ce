package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(users))
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("user created", "user", actingUser(r), "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// ResetPassword handles PUT /api/users/{username}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := r.PathValue("username")
	if err := store.UpdateUserPassword(r.Context(), h.DB, username, hash); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("password reset", "user", actingUser(r), "target", username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Delete handles DELETE /api/users/{username}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == actingUser(r) {
		jsonError(w, http.StatusConflict, "cannot delete yourself")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, username); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("user deleted", "user", actingUser(r), "target", username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
