package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/shared"
)

func newStackHandler(t *testing.T) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := MiddlewareConfig{
		Logger:         slog.New(slog.DiscardHandler),
		SessionManager: shared.NewSessionManager(client, "okean_session", "secret", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("secret"),
	}

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	stack := MiddlewareStack(cfg)
	for i := len(stack) - 1; i >= 0; i-- {
		handler = stack[i](handler)
	}
	return handler, mr
}

func seedSession(t *testing.T, mr *miniredis.Miniredis, sessionID, csrfToken string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"values":  map[string]string{shared.CSRFSessionKey: csrfToken},
		"user_id": "7",
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set("session:"+sessionID, string(payload)))
}

func TestCSRFMiddlewareAcceptsFormFieldToken(t *testing.T) {
	handler, mr := newStackHandler(t)
	seedSession(t, mr, "sess-1", "tok-abc")

	body := strings.NewReader(shared.CSRFFormField + "=tok-abc")
	req := httptest.NewRequest(http.MethodPost, "/anything", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "okean_session", Value: "sess-1"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	handler, mr := newStackHandler(t)
	seedSession(t, mr, "sess-2", "tok-abc")

	req := httptest.NewRequest(http.MethodPost, "/anything", nil)
	req.AddCookie(&http.Cookie{Name: "okean_session", Value: "sess-2"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	handler, _ := newStackHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
