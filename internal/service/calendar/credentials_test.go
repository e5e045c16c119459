package calendar

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/tom-bou/speech-schedulin-assistant/internal/config"
	"golang.org/x/oauth2"
)

func newTestCredentialManager(t *testing.T) *CredentialManager {
	t.Helper()
	return NewCredentialManager(config.CalendarConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenFile:    filepath.Join(t.TempDir(), "token.json"),
		CalendarID:   "primary",
		CallbackAddr: "localhost:8912",
	})
}

func TestTokenSaveLoadRoundTrip(t *testing.T) {
	m := newTestCredentialManager(t)

	saved := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	if err := m.saveToken(saved); err != nil {
		t.Fatalf("saveToken err: %v", err)
	}

	loaded, err := m.loadToken()
	if err != nil {
		t.Fatalf("loadToken err: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Fatalf("token round trip mismatch: %+v", loaded)
	}
	if !loaded.Valid() {
		t.Fatal("unexpired token must still be valid after round trip")
	}
}

func TestLoadTokenMissingFile(t *testing.T) {
	m := newTestCredentialManager(t)
	if _, err := m.loadToken(); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestRedirectURLFollowsCallbackAddr(t *testing.T) {
	m := newTestCredentialManager(t)
	if m.oauthCfg.RedirectURL != "http://localhost:8912/oauth2/callback" {
		t.Fatalf("unexpected redirect url: %s", m.oauthCfg.RedirectURL)
	}
}

func TestCallbackAddrParsing(t *testing.T) {
	addr, err := callbackAddr("http://localhost:8912/oauth2/callback")
	if err != nil {
		t.Fatalf("callbackAddr err: %v", err)
	}
	if addr != "localhost:8912" {
		t.Fatalf("unexpected addr: %s", addr)
	}

	if _, err := callbackAddr("/oauth2/callback"); err == nil {
		t.Fatal("expected error for redirect url without host")
	}
}

func TestConsentCallbackRepeatedHitsNeverBlock(t *testing.T) {
	results := make(chan consentResult, 1)
	router := consentCallbackRouter("good-state", results)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The result channel holds one entry; every hit past the first
		// must still complete its response.
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/oauth2/callback?state=bad", nil)
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("hit %d: got status %d, want %d", i, rec.Code, http.StatusBadRequest)
			}
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/oauth2/callback?state=good-state&code=abc", nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("valid hit: got status %d, want %d", rec.Code, http.StatusOK)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback handler blocked on a repeated hit")
	}

	// The first outcome wins; the flow aborts on it.
	result := <-results
	if !errors.Is(result.err, ErrStateMismatch) {
		t.Fatalf("expected first result to be ErrStateMismatch, got %+v", result)
	}
}

func TestConsentCallbackDeliversCode(t *testing.T) {
	results := make(chan consentResult, 1)
	router := consentCallbackRouter("good-state", results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth2/callback?state=good-state&code=auth-code", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	result := <-results
	if result.err != nil {
		t.Fatalf("unexpected error: %v", result.err)
	}
	if result.code != "auth-code" {
		t.Fatalf("unexpected code: %q", result.code)
	}
}

func TestNewStateIsUniqueAndURLSafe(t *testing.T) {
	first, err := newState()
	if err != nil {
		t.Fatalf("newState err: %v", err)
	}
	second, err := newState()
	if err != nil {
		t.Fatalf("newState err: %v", err)
	}
	if first == second {
		t.Fatal("states must be unique")
	}
	for _, c := range first {
		if c == '+' || c == '/' || c == '=' {
			t.Fatalf("state must be url-safe, got %q", first)
		}
	}
}
