package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"productcatalog/internal/hash"
	"productcatalog/internal/models"
	"productcatalog/internal/token"
)

var testSecret = []byte("test-jwt-secret")

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	return &AuthHandler{
		DB:        initTestDB(t),
		JWTSecret: testSecret,
		TokenTTL:  15 * time.Minute,
	}
}

func doJSONRequest(t *testing.T, method, target string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func mustSign(t *testing.T, userID uint, email string, isAdmin bool) string {
	t.Helper()
	signed, err := token.Sign(userID, email, isAdmin, testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func seedUser(t *testing.T, db *gorm.DB, username, email, password string, isAdmin bool) models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: pwHash,
		IsAdmin:  isAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
