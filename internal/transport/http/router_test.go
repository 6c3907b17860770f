package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"productcatalog/internal/handlers"
	"productcatalog/internal/models"
)

var testSecret = []byte("test-jwt-secret")

func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	authHandler := &handlers.AuthHandler{DB: db, JWTSecret: testSecret, TokenTTL: 15 * time.Minute}
	require.NoError(t, authHandler.EnsureAdminUser(t.Context(), "admin@example.com", "admin123"))

	e := echo.New()
	Register(e, &Deps{
		JWTSecret:      testSecret,
		AuthHandler:    authHandler,
		ProductHandler: &handlers.ProductHandler{DB: db},
	})
	return e, db
}

func do(t *testing.T, e *echo.Echo, method, target, bearer string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func tokenFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// Exercises the full privilege boundary: a fresh registration cannot
// mutate products, the bootstrap admin can.
func TestAdminBoundary(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	aliceToken := tokenFrom(t, rec)

	product := map[string]interface{}{
		"name":         "gadget",
		"video_link":   "https://example.com/v.mp4",
		"actual_price": 19.99,
		"dis_price":    9.99,
	}

	rec = do(t, e, http.MethodPost, "/api/products", aliceToken, product)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/products", "", product)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	adminToken := tokenFrom(t, rec)

	rec = do(t, e, http.MethodPost, "/api/products", adminToken, product)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/products/upload", adminToken, product)
	require.Equal(t, http.StatusCreated, rec.Code)

	// reads stay public
	rec = do(t, e, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileRoute(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	aliceToken := tokenFrom(t, rec)

	rec = do(t, e, http.MethodGet, "/api/users/profile", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "a@x.com", profile["email"])
	require.Equal(t, false, profile["isadmin"])

	rec = do(t, e, http.MethodGet, "/api/users/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/users/profile", "not-a-valid-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorBodyShape(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/products/99", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "product not found", resp["message"])
}
