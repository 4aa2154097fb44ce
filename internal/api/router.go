// Package api exposes the inventory over a JSON HTTP API.
package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/inventar/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	objectsHandler := &ObjectsHandler{DB: db}
	zonesHandler := &ZonesHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	statusesHandler := &StatusesHandler{DB: db}
	historyHandler := &HistoryHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("PUT /api/users/{username}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{username}", admin(usersHandler.Delete))

	// Objects: read (all roles), write (manager+), bulk delete (admin).
	mux.Handle("GET /api/objects", read(objectsHandler.List))
	mux.Handle("POST /api/objects", write(objectsHandler.Create))
	mux.Handle("DELETE /api/objects", admin(objectsHandler.DeleteAll))
	mux.Handle("GET /api/objects/{id}", read(objectsHandler.Get))
	mux.Handle("PUT /api/objects/{id}", write(objectsHandler.Update))
	mux.Handle("DELETE /api/objects/{id}", write(objectsHandler.Delete))
	mux.Handle("POST /api/objects/{id}/adjust", write(objectsHandler.Adjust))
	mux.Handle("PUT /api/objects/{id}/image", write(objectsHandler.UploadImage))
	mux.Handle("GET /api/objects/{id}/image", read(objectsHandler.GetImage))
	mux.Handle("GET /api/objects/{id}/history", read(objectsHandler.GetHistory))

	// Zones: read (all roles), write (manager+), remove (admin).
	mux.Handle("GET /api/zones", read(zonesHandler.List))
	mux.Handle("POST /api/zones", write(zonesHandler.Create))
	mux.Handle("GET /api/zones/{id}", read(zonesHandler.Get))
	mux.Handle("PUT /api/zones/{id}", write(zonesHandler.Update))
	mux.Handle("DELETE /api/zones/{id}", admin(zonesHandler.Remove))
	mux.Handle("GET /api/zones/{id}/objects", read(zonesHandler.Objects))

	mux.Handle("GET /api/categories", read(categoriesHandler.List))
	mux.Handle("POST /api/categories", write(categoriesHandler.Create))
	mux.Handle("GET /api/categories/{id}", read(categoriesHandler.Get))

	mux.Handle("GET /api/statuses", read(statusesHandler.List))
	mux.Handle("POST /api/statuses", write(statusesHandler.Create))
	mux.Handle("GET /api/statuses/{id}", read(statusesHandler.Get))

	mux.Handle("GET /api/history", read(historyHandler.List))
	mux.Handle("GET /api/history/summary", read(historyHandler.Summary))

	mux.Handle("GET /api/inventory", read(inventoryHandler.List))

	return RequestIDMiddleware(LoggingMiddleware(mux))
}
