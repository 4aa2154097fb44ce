package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "request_id"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// AuthMiddleware validates the bearer token, rejects revoked tokens and
// deleted users, and adds the claims to the request context. The role is
// refreshed from the users table.
func AuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
			if err != nil {
				storeError(w, r, err)
				return
			}
			if revoked {
				jsonError(w, http.StatusUnauthorized, "token revoked")
				return
			}

			user, err := store.GetUserByUsername(r.Context(), db, claims.Username)
			if errors.Is(err, store.ErrNotFound) {
				jsonError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			if err != nil {
				storeError(w, r, err)
				return
			}
			claims.Role = user.Role

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !model.RoleAtLeast(claims.Role, minimum) {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// actingUser is the username recorded on writes.
func actingUser(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestIDMiddleware keeps a well-formed incoming X-Request-ID or assigns
// a new UUID, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", RequestID(r.Context()),
		)
	})
}
