package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		storeError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, claims, err := auth.GenerateToken(h.JWTSecret, user, auth.TokenExpiry)
	if err != nil {
		slog.Error("generating token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, claims.Username)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.Username, hash); err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
