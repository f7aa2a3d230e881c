package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rentguard/rentguard/internal/api"
	"github.com/rentguard/rentguard/internal/config"
	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/i18n"
	"github.com/rentguard/rentguard/internal/services"
)

func newTestHandler(t *testing.T) *api.Handler {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "rentguard-main-test.db"))
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
	handler, err := api.NewHandler(database, api.Options{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Location:  time.UTC,
		I18n:      i18nManager,
		Policy:    services.PropertyPolicy{FreeTierLimit: 2},
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return handler
}

func TestRootCommandRegistersOperatorCommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "create-user", "reset-password", "orphans", "premium"} {
		command, _, err := root.Find([]string{name})
		if err != nil || command == root {
			t.Fatalf("expected %s subcommand, got err=%v", name, err)
		}
	}

	orphans, _, err := root.Find([]string{"orphans"})
	if err != nil {
		t.Fatalf("find orphans: %v", err)
	}
	if orphans.Flags().Lookup("purge") == nil {
		t.Fatal("expected --purge flag on orphans")
	}
}

func TestServerAppServesHealthWithCORS(t *testing.T) {
	app := newServerApp(newTestHandler(t), "https://app.example.com", io.Discard)

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "https://app.example.com")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	if origin := response.Header.Get("Access-Control-Allow-Origin"); origin != "https://app.example.com" {
		t.Fatalf("expected CORS origin header, got %q", origin)
	}
}

func TestServerAppWithoutOriginsSkipsCORS(t *testing.T) {
	app := newServerApp(newTestHandler(t), "", io.Discard)

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "https://elsewhere.example.com")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer response.Body.Close()

	if origin := response.Header.Get("Access-Control-Allow-Origin"); origin != "" {
		t.Fatalf("expected no CORS header, got %q", origin)
	}
}

func TestFallbackBackendsWithoutBrokers(t *testing.T) {
	publisher, closePublisher, err := newEventPublisher(config.Config{})
	if err != nil {
		t.Fatalf("newEventPublisher: %v", err)
	}
	defer closePublisher()
	if _, ok := publisher.(services.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", publisher)
	}

	store, closeStore, err := newRevocationStore(t.Context(), config.Config{})
	if err != nil {
		t.Fatalf("newRevocationStore: %v", err)
	}
	defer closeStore()
	if store == nil {
		t.Fatal("expected in-memory revocation store")
	}
}
