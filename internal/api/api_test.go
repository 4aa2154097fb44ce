package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	db    *sql.DB
	token string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)

	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	_, err = store.CreateUser(context.Background(), database, "admin", hash, model.RoleAdmin)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	return &testServer{Server: server, db: database, token: token}
}

// tokenFor creates a user with role and returns a token for it.
func (s *testServer) tokenFor(t *testing.T, username, role string) string {
	t.Helper()
	user, err := store.CreateUser(context.Background(), s.db, username, "unused", role)
	require.NoError(t, err)
	token, _, err := auth.GenerateToken(testJWTSecret, user, auth.TokenExpiry)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and decodes the response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

var drillBody = map[string]any{
	"name":        "Cordless Drill",
	"price":       "8",
	"quantity":    3,
	"category_id": 3,
	"zone_id":     2,
	"status_id":   1,
}

func TestLoginEndpoint(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "ghost", "password": "password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestObjectsAPIFlow(t *testing.T) {
	s := setupTestServer(t)

	var created model.Object
	resp := s.do(t, "POST", "/api/objects", s.token, drillBody, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "admin", created.CreationUser)
	assert.Equal(t, "Storage", created.ZoneName)

	var updated model.Object
	resp = s.do(t, "PUT", "/api/objects/1", s.token, map[string]any{"price": 10, "quantity": 5}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, "10", updated.Price.String())

	var entries []model.HistoryEntry
	resp = s.do(t, "GET", "/api/objects/1/history", s.token, nil, &entries)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, entries, 3)
	assert.Equal(t, model.FieldPrice, entries[1].FieldModified)
	assert.Equal(t, model.FieldQuantity, entries[2].FieldModified)

	resp = s.do(t, "DELETE", "/api/objects/1", s.token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, "DELETE", "/api/objects/1", s.token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var listed []model.Object
	s.do(t, "GET", "/api/objects", s.token, nil, &listed)
	assert.Empty(t, listed)

	s.do(t, "GET", "/api/objects?include_deleted=true", s.token, nil, &listed)
	assert.Len(t, listed, 1)
}

func TestObjectValidationErrors(t *testing.T) {
	s := setupTestServer(t)

	bad := map[string]any{}
	for k, v := range drillBody {
		bad[k] = v
	}
	bad["quantity"] = -1
	resp := s.do(t, "POST", "/api/objects", s.token, bad, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, field := range []string{"price", "quantity"} {
		missing := map[string]any{}
		for k, v := range drillBody {
			if k != field {
				missing[k] = v
			}
		}
		resp = s.do(t, "POST", "/api/objects", s.token, missing, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "object without %s is rejected", field)
	}

	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)

	resp = s.do(t, "PUT", "/api/objects/1", s.token, map[string]any{"creation_user": "mallory"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "fields outside the update set are rejected")

	resp = s.do(t, "PUT", "/api/objects/1", s.token, map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, "GET", "/api/objects/abc", s.token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, "GET", "/api/objects/99", s.token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestZoneRemovalPolicy(t *testing.T) {
	s := setupTestServer(t)

	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)

	resp := s.do(t, "DELETE", "/api/zones/2", s.token, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, "DELETE", "/api/zones/1", s.token, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, "DELETE", "/api/zones/3?comment=closed", s.token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/zones/3", s.token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var objects []model.Object
	resp = s.do(t, "GET", "/api/zones/2/objects", s.token, nil, &objects)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, objects, 1)
}

func TestReferenceEndpoints(t *testing.T) {
	s := setupTestServer(t)

	var zone model.Zone
	resp := s.do(t, "POST", "/api/zones", s.token, map[string]string{"name": "Workshop"}, &zone)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, "POST", "/api/zones", s.token, map[string]string{"name": "Workshop"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, "PUT", "/api/zones/4", s.token, map[string]string{"name": "Garage"}, &zone)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Garage", zone.Name)

	resp = s.do(t, "POST", "/api/categories", s.token, map[string]string{"name": "Tools"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var status model.Status
	resp = s.do(t, "POST", "/api/statuses", s.token, map[string]string{"name": "Lost"}, &status)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "admin", status.CreationUser)

	var categories []model.Category
	s.do(t, "GET", "/api/categories", s.token, nil, &categories)
	assert.Len(t, categories, 4)
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, "GET", "/api/objects", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, "GET", "/api/objects", "garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleBasedAccess(t *testing.T) {
	s := setupTestServer(t)
	userToken := s.tokenFor(t, "user1", model.RoleUser)
	managerToken := s.tokenFor(t, "manager1", model.RoleManager)

	resp := s.do(t, "GET", "/api/objects", userToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, "POST", "/api/objects", userToken, drillBody, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var created model.Object
	resp = s.do(t, "POST", "/api/objects", managerToken, drillBody, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "manager1", created.CreationUser)

	resp = s.do(t, "DELETE", "/api/zones/3", managerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "DELETE", "/api/objects?confirm=true", managerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "GET", "/api/users", userToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	s := setupTestServer(t)
	token := s.tokenFor(t, "temp", model.RoleManager)

	resp := s.do(t, "DELETE", "/api/users/temp", s.token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/objects", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, "POST", "/api/auth/logout", s.token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/objects", s.token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBulkDelete(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)
	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)

	resp := s.do(t, "DELETE", "/api/objects?zone_id=2", s.token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result map[string]int
	resp = s.do(t, "DELETE", "/api/objects?zone_id=2&confirm=true", s.token, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, result["deleted"])
}

func TestHistoryEndpoints(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)
	s.do(t, "POST", "/api/objects/1/adjust", s.token, map[string]any{"delta": -1, "comment": "lost"}, nil)

	var entries []model.HistoryEntry
	resp := s.do(t, "GET", "/api/history?action=UPDATE&zone_id=2", s.token, nil, &entries)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, entries, 1)
	assert.Equal(t, "lost", entries[0].Comment)

	resp = s.do(t, "GET", "/api/history?from=yesterday", s.token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var summaries []model.HistorySummary
	resp = s.do(t, "GET", "/api/history/summary", s.token, nil, &summaries)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, summaries, 2)

	var inventory []model.ZoneInventory
	resp = s.do(t, "GET", "/api/inventory", s.token, nil, &inventory)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, inventory, 3)
	assert.Equal(t, 2, inventory[1].TotalQuantity)
}

func TestObjectImageUpload(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, "POST", "/api/objects", s.token, drillBody, nil)

	var photo bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(1, 1, color.White)
	require.NoError(t, png.Encode(&photo, img))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "drill.png")
	require.NoError(t, err)
	_, err = part.Write(photo.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, err := http.NewRequest("PUT", s.URL+"/api/objects/1/image", &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err = http.NewRequest("GET", s.URL+"/api/objects/1/image", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestRequestIDHeader(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, "GET", "/api/zones", s.token, nil, nil)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req, err := http.NewRequest("GET", s.URL+"/api/zones", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set(RequestIDHeader, "6f1c2a4e-8f3b-4c1d-9a7e-2b5d6c8e0f11")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "6f1c2a4e-8f3b-4c1d-9a7e-2b5d6c8e0f11", resp.Header.Get(RequestIDHeader))
}

func TestParseTime(t *testing.T) {
	for _, raw := range []string{"2024-05-01", "2024-05-01 00:00:00", "2024-05-01T02:00:00+02:00"} {
		got, err := ParseTime(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2024-05-01 00:00:00", got.Format(store.TimeLayout), raw)
	}
}
