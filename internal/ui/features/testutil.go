// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapview/internal/testutil"
	"github.com/leapstack-labs/leapview/internal/ui/notifier"
	"github.com/leapstack-labs/leapview/internal/workspace"
)

// TestScope is the scope fixtures list datasets from.
const TestScope = "bigquery-public-data"

// TestFixture holds the dependencies of UI handler tests.
type TestFixture struct {
	Engine       *testutil.FakeEngine
	Registry     *workspace.Registry
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a fake engine, a workspace registry on top of it,
// a notifier and a cookie store.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	engine := testutil.NewFakeEngine()
	registry := workspace.NewRegistry(workspace.Config{
		Connector: engine,
		Scope:     TestScope,
		TTL:       time.Hour,
		Logger:    testutil.NewTestLogger(t),
	})
	t.Cleanup(func() { _ = registry.Close() })

	return &TestFixture{
		Engine:       engine,
		Registry:     registry,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// SignalsRequest builds a datastar POST request carrying signals as its JSON body.
func SignalsRequest(t *testing.T, path string, signals any) *http.Request {
	t.Helper()
	body, err := json.Marshal(signals)
	if err != nil {
		t.Fatalf("failed to encode signals: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}

// WithCookies copies the cookies a previous response set onto r.
func WithCookies(r *http.Request, prev *httptest.ResponseRecorder) *http.Request {
	for _, c := range prev.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
