package calendar

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tom-bou/speech-schedulin-assistant/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
)

var (
	ErrStateMismatch   = errors.New("oauth callback state mismatch")
	ErrCallbackTimeout = errors.New("timed out waiting for oauth callback")
)

const consentTimeout = 3 * time.Minute

// CredentialManager keeps the OAuth token valid and persisted. The
// token file is read at startup and rewritten after every refresh or
// consent flow; only one process is assumed to touch it.
type CredentialManager struct {
	oauthCfg  *oauth2.Config
	tokenFile string
}

// NewCredentialManager builds the manager from the calendar config.
func NewCredentialManager(cfg config.CalendarConfig) *CredentialManager {
	return &CredentialManager{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  fmt.Sprintf("http://%s/oauth2/callback", cfg.CallbackAddr),
			Scopes:       []string{calendarapi.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		tokenFile: cfg.TokenFile,
	}
}

// HTTPClient returns an authenticated HTTP client, refreshing or
// re-consenting as needed. The returned client keeps the token fresh
// for subsequent provider calls.
func (m *CredentialManager) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := m.validToken(ctx)
	if err != nil {
		return nil, err
	}
	return m.oauthCfg.Client(ctx, token), nil
}

func (m *CredentialManager) validToken(ctx context.Context) (*oauth2.Token, error) {
	token, err := m.loadToken()
	switch {
	case err == nil && token.Valid():
		return token, nil
	case err == nil && token.RefreshToken != "":
		log.Printf("[calendar] token expired, refreshing")
		refreshed, refreshErr := m.oauthCfg.TokenSource(ctx, token).Token()
		if refreshErr != nil {
			return nil, fmt.Errorf("refresh token: %w", refreshErr)
		}
		if saveErr := m.saveToken(refreshed); saveErr != nil {
			return nil, saveErr
		}
		return refreshed, nil
	default:
		log.Printf("[calendar] no valid credentials, starting consent flow")
		token, err = m.consent(ctx)
		if err != nil {
			return nil, err
		}
		if saveErr := m.saveToken(token); saveErr != nil {
			return nil, saveErr
		}
		return token, nil
	}
}

func (m *CredentialManager) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(m.tokenFile)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", m.tokenFile, err)
	}
	return token, nil
}

func (m *CredentialManager) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(m.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("write token file %s: %w", m.tokenFile, err)
	}
	return nil
}

type consentResult struct {
	code string
	err  error
}

// consentCallbackRouter serves the OAuth redirect. Only the first
// outcome is reported; repeated hits (retries, stale browser tabs)
// respond normally and are otherwise dropped so the handler never
// blocks on the result channel.
func consentCallbackRouter(state string, results chan<- consentResult) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/oauth2/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var result consentResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			result = consentResult{err: ErrStateMismatch}
		case q.Get("error") != "":
			http.Error(w, "consent denied", http.StatusBadRequest)
			result = consentResult{err: fmt.Errorf("consent denied: %s", q.Get("error"))}
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><body><p>Authorization complete. You can close this window.</p></body></html>")
			result = consentResult{code: q.Get("code")}
		}

		select {
		case results <- result:
		default:
		}
	})
	return r
}

// consent runs the interactive flow: a local callback listener, the
// auth URL printed for the user, then the code exchange.
func (m *CredentialManager) consent(ctx context.Context) (*oauth2.Token, error) {
	state, err := newState()
	if err != nil {
		return nil, err
	}

	addr, err := callbackAddr(m.oauthCfg.RedirectURL)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("start callback listener on %s: %w", addr, err)
	}

	resultCh := make(chan consentResult, 1)

	srv := &http.Server{Handler: consentCallbackRouter(state, resultCh), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case resultCh <- consentResult{err: serveErr}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := m.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("\nOpen the following URL in your browser to authorize calendar access:\n\n%s\n\n", authURL)

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, result.err
		}
		token, exchErr := m.oauthCfg.Exchange(ctx, result.code)
		if exchErr != nil {
			return nil, fmt.Errorf("exchange consent code: %w", exchErr)
		}
		return token, nil
	case <-time.After(consentTimeout):
		return nil, ErrCallbackTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func callbackAddr(redirectURL string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("redirect url %q has no host", redirectURL)
	}
	return u.Host, nil
}
