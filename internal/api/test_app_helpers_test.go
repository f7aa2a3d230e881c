package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/i18n"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "StrongPass1"

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	handler  *Handler
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppWithOptions(t, Options{})
}

func newTestAppWithOptions(t *testing.T, options Options) testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "rentguard-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	options.SecretKey = "test-secret-key-with-enough-length-0001"
	options.I18n = i18nManager
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Policy.FreeTierLimit == 0 {
		options.Policy.FreeTierLimit = 2
	}
	if options.Policy.Rates == nil {
		options.Policy.Rates = services.StaticRateTable{decimal.RequireFromString("25.5")}
	}

	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return testApp{app: app, database: database, handler: handler}
}

// pinToday fixes the handler clock at noon UTC of the given date.
func (env testApp) pinToday(year int, month time.Month, day int) {
	fixed := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	env.handler.now = func() time.Time { return fixed }
}

func createTestUser(t *testing.T, database *gorm.DB, email string, mustChangePassword bool) models.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Email:              strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:       string(passwordHash),
		MustChangePassword: mustChangePassword,
		CreatedAt:          time.Now().UTC(),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Language", "en")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func loginAndExtractToken(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": testPassword,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}

	payload := struct {
		Token string `json:"token"`
	}{}
	decodeJSON(t, response.Body, &payload)
	if payload.Token == "" {
		t.Fatal("login response has no token")
	}
	return payload.Token
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, body, &payload)
	code, _ := payload["error"].(string)
	return code
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

type createdPropertyResponse struct {
	Outcome  string        `json:"outcome"`
	Property propertyView  `json:"property"`
	Payments []paymentView `json:"payments"`
	Error    string        `json:"error"`
}

func createTestProperty(t *testing.T, app *fiber.App, token string, body fiber.Map) createdPropertyResponse {
	t.Helper()

	response := doJSON(t, app, http.MethodPost, "/api/properties", token, body)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d", response.StatusCode)
	}
	created := createdPropertyResponse{}
	decodeJSON(t, response.Body, &created)
	return created
}
