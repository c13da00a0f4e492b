package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/telegram"
)

const testBotToken = "12345:test-token"

type staticUser struct {
	user *telegram.User
}

func (s staticUser) User() *telegram.User { return s.user }

func signedInitData(userJSON string) string {
	return telegram.Sign(url.Values{
		"auth_date": {"1767225600"},
		"user":      {userJSON},
	}, testBotToken)
}

func captureUser(got **telegram.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = TelegramUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestTelegramInitDataValidHeader(t *testing.T) {
	var got *telegram.User
	handler := TelegramInitData(TelegramPolicy{BotToken: testBotToken, Require: true}, nil, nil)(captureUser(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(InitDataHeader, signedInitData(`{"id":42,"first_name":"Dilnoza"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got == nil || got.ID != 42 {
		t.Fatalf("expected user 42 in context, got %+v", got)
	}
}

func TestTelegramInitDataRejectsBadSignature(t *testing.T) {
	var got *telegram.User
	handler := TelegramInitData(TelegramPolicy{BotToken: "other-token"}, nil, nil)(captureUser(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(InitDataHeader, signedInitData(`{"id":42}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got != nil {
		t.Fatal("handler must not run")
	}
}

func TestTelegramInitDataFallsBackToHost(t *testing.T) {
	var got *telegram.User
	host := staticUser{user: &telegram.User{ID: 7, FirstName: "Host"}}
	handler := TelegramInitData(TelegramPolicy{Require: true}, host, nil)(captureUser(&got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil))

	if rec.Code != http.StatusNoContent || got == nil || got.ID != 7 {
		t.Fatalf("expected host user, got code=%d user=%+v", rec.Code, got)
	}
}

func TestTelegramInitDataRequireWithoutUser(t *testing.T) {
	var got *telegram.User
	strict := TelegramInitData(TelegramPolicy{Require: true}, staticUser{}, nil)(captureUser(&got))
	rec := httptest.NewRecorder()
	strict.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	lenient := TelegramInitData(TelegramPolicy{}, staticUser{}, nil)(captureUser(&got))
	rec = httptest.NewRecorder()
	lenient.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent || got != nil {
		t.Fatalf("browser mode should pass without a user, got code=%d user=%+v", rec.Code, got)
	}
}

func TestRequestIDPropagatesOrMints(t *testing.T) {
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated id, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDBytes+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got == "" || len(got) > maxRequestIDBytes {
		t.Fatalf("expected minted id, got %q", got)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"panic":"boom"`) {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":201`) || !strings.Contains(out, `"bytes":2`) || !strings.Contains(out, `"path":"/api/v1/cart/items"`) {
		t.Fatalf("unexpected access log %s", out)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"https://web.telegram.org"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://web.telegram.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://web.telegram.org" {
		t.Fatalf("expected origin to be allowed, got %q", got)
	}
}
