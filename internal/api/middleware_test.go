package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLanguageMiddlewareLocalizesErrors(t *testing.T) {
	env := newTestApp(t)

	request := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	request.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")
	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("session request failed: %v", err)
	}
	defer response.Body.Close()

	cookie := responseCookie(response.Cookies(), languageCookieName)
	if cookie == nil || cookie.Value != "tr" {
		t.Fatalf("expected tr language cookie, got %#v", cookie)
	}

	payload := map[string]string{}
	decodeJSON(t, response.Body, &payload)
	if payload["error"] != "unauthorized" {
		t.Fatalf("expected unauthorized code, got %q", payload["error"])
	}
	if payload["message"] == "" || payload["message"] == "Please sign in to continue." {
		t.Fatalf("expected a Turkish message, got %q", payload["message"])
	}
}

func TestAuthRequiredAcceptsCookieToken(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "owner@example.com", false)
	token := loginAndExtractToken(t, env.app, "owner@example.com")

	request := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	request.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("session request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
}

func TestAuthRequiredRejectsTamperedToken(t *testing.T) {
	env := newTestApp(t)
	createTestUser(t, env.database, "owner@example.com", false)
	token := loginAndExtractToken(t, env.app, "owner@example.com")

	response := doJSON(t, env.app, http.MethodGet, "/api/auth/session", token+"x", nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", response.StatusCode)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestApp(t)

	health := doJSON(t, env.app, http.MethodGet, "/healthz", "", nil)
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected health status 200, got %d", health.StatusCode)
	}

	missing := doJSON(t, env.app, http.MethodGet, "/api/unknown", "", nil)
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", missing.StatusCode)
	}
	if code := readAPIError(t, missing.Body); code != "not_found" {
		t.Fatalf("expected not_found, got %q", code)
	}
}
