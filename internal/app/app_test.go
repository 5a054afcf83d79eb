package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/session"
)

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

// testConfig returns a frontend config pointing at apiURL.
func testConfig(mode, csrfSecret, apiURL string) *config.Config {
	return &config.Config{
		Profile: config.ProfileDevelopment,
		Environments: map[string]config.EnvironmentConfig{
			config.ProfileDevelopment: {APIURL: apiURL, Timeout: "5s"},
		},
		Server: config.ServerConfig{
			Host:       "127.0.0.1",
			Port:       4200,
			Mode:       mode,
			CSRFSecret: csrfSecret,
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

func cleanupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a == nil {
		return
	}
	if a.sessions != nil {
		_ = a.sessions.Close()
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// newBackend serves an empty category list and 404 for everything else.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/v1/categories" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveCORSConfig(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		cfg         config.CORSConfig
		wantOrigins []string
		wantMaxAge  time.Duration
	}{
		{
			name:        "debug without allowlist keeps wildcard",
			mode:        gin.DebugMode,
			wantOrigins: []string{"*"},
			wantMaxAge:  24 * time.Hour,
		},
		{
			name:        "release without allowlist denies",
			mode:        gin.ReleaseMode,
			wantOrigins: []string{},
			wantMaxAge:  24 * time.Hour,
		},
		{
			name:        "configured allowlist wins",
			mode:        gin.ReleaseMode,
			cfg:         config.CORSConfig{AllowOrigins: []string{"https://pecas.example.com"}, MaxAge: "12h"},
			wantOrigins: []string{"https://pecas.example.com"},
			wantMaxAge:  12 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCORSConfig(tt.mode, tt.cfg)
			if len(got.AllowOrigins) != len(tt.wantOrigins) {
				t.Fatalf("AllowOrigins = %v; want %v", got.AllowOrigins, tt.wantOrigins)
			}
			for i := range got.AllowOrigins {
				if got.AllowOrigins[i] != tt.wantOrigins[i] {
					t.Errorf("AllowOrigins = %v; want %v", got.AllowOrigins, tt.wantOrigins)
				}
			}
			if got.MaxAge != tt.wantMaxAge {
				t.Errorf("MaxAge = %v; want %v", got.MaxAge, tt.wantMaxAge)
			}
		})
	}
}

func TestResolveCORSConfig_OverridesMethodsAndHeaders(t *testing.T) {
	got := resolveCORSConfig(gin.DebugMode, config.CORSConfig{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"HX-Request"},
		AllowCredentials: true,
	})
	if len(got.AllowMethods) != 1 || got.AllowMethods[0] != "GET" {
		t.Errorf("AllowMethods = %v", got.AllowMethods)
	}
	if len(got.AllowHeaders) != 1 || got.AllowHeaders[0] != "HX-Request" {
		t.Errorf("AllowHeaders = %v", got.AllowHeaders)
	}
	if !got.AllowCredentials {
		t.Error("AllowCredentials = false; want true")
	}
}

func TestIsPlaceholderCSRFSecret(t *testing.T) {
	for secret, want := range map[string]bool{
		"":                             true,
		"   ":                          true,
		"change-me-to-a-random-secret": true,
		"CHANGE-ME-IN-ENV":             true,
		"a-real-secret-value-0123456":  false,
	} {
		if got := isPlaceholderCSRFSecret(secret); got != want {
			t.Errorf("isPlaceholderCSRFSecret(%q) = %v; want %v", secret, got, want)
		}
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Fatalf("New(nil) error = %v", err)
	}
}

func TestNew_CSRFSecretValidation(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		csrfSecret      string
		wantErrContains string
	}{
		{
			name:            "release mode rejects empty csrf secret",
			mode:            gin.ReleaseMode,
			wantErrContains: "csrf_secret must be a non-placeholder value in release mode",
		},
		{
			name:            "release mode rejects placeholder csrf secret",
			mode:            gin.ReleaseMode,
			csrfSecret:      "change-me-in-env",
			wantErrContains: "csrf_secret must be a non-placeholder value in release mode",
		},
		{
			name: "test mode allows empty csrf secret",
			mode: gin.TestMode,
		},
		{
			name:       "release mode accepts a real csrf secret",
			mode:       gin.ReleaseMode,
			csrfSecret: "Abcd1234!Abcd1234!Abcd1234!Abcd1234!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { gin.SetMode(gin.TestMode) })

			app, err := New(testConfig(tt.mode, tt.csrfSecret, "http://127.0.0.1:1/api/v1"))
			if tt.wantErrContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrContains) {
					t.Fatalf("New() error = %v, want contains %q", err, tt.wantErrContains)
				}
				if app != nil {
					t.Fatalf("New() app = %#v, want nil", app)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			cleanupTestApp(t, app)
		})
	}
}

func TestNew_ServesPages(t *testing.T) {
	backend := newBackend(t)
	app, err := New(testConfig(gin.TestMode, "", backend.URL+"/api/v1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { cleanupTestApp(t, app) })

	t.Run("root redirects to categories", func(t *testing.T) {
		w := serve(app.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusFound || w.Header().Get("Location") != HomeRoute {
			t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("category list renders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req.Header.Set("Accept", "text/html")
		w := serve(app.Handler(), req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
			t.Errorf("Content-Type = %q", ct)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("expected a request id on the response")
		}
	})

	t.Run("health reports the backend", func(t *testing.T) {
		w := serve(app.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body struct {
			Components map[string]string `json:"components"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body.Components["backend"] != "ok" {
			t.Errorf("backend = %q", body.Components["backend"])
		}
	})
}

func TestNew_AuthRequired_RedirectsToLogin(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(gin.TestMode, "", backend.URL+"/api/v1")
	cfg.Auth.Required = true
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { cleanupTestApp(t, app) })

	w := serve(app.Handler(), httptest.NewRequest(http.MethodGet, "/parts", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next="+url.QueryEscape("/parts") {
		t.Errorf("Location = %q", loc)
	}

	w = serve(app.Handler(), httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("login page: expected 200, got %d", w.Code)
	}
}

func TestBackendPinger(t *testing.T) {
	backend := newBackend(t)
	if err := backendPinger(backend.URL + "/api/v1")(context.Background()); err != nil {
		t.Errorf("an HTTP 404 answer should count as reachable, got %v", err)
	}

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	if err := backendPinger(downURL)(context.Background()); err == nil {
		t.Error("expected an error for an unreachable backend")
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	listenErr := errors.New("listen failed")
	server := &fakeHTTPServer{listenErr: listenErr}
	newHTTPServer = func(string, http.Handler, time.Duration) httpServer {
		return server
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 4200}},
	}

	err := a.Run()
	if err == nil || !strings.Contains(err.Error(), "server error") {
		t.Fatalf("Run() error = %v, want contains %q", err, "server error")
	}
	if !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v, want wraps %v", err, listenErr)
	}
}

func TestRun_ShutdownSignal_ClosesSessions(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	var gotTimeout time.Duration
	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	newHTTPServer = func(_ string, _ http.Handler, writeTimeout time.Duration) httpServer {
		gotTimeout = writeTimeout
		return server
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	sessions := session.NewStore(session.StoreOptions{})
	sessions.Create()

	a := &App{
		engine:   gin.New(),
		sessions: sessions,
		logger:   logger.Default(),
		cfg:      &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 4200, Timeout: "45s"}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}
	if sessions.Len() != 0 {
		t.Errorf("expected the session store to be closed, %d sessions left", sessions.Len())
	}
	if gotTimeout != 45*time.Second {
		t.Errorf("write timeout = %v; want 45s", gotTimeout)
	}
}

func TestRun_NilApp(t *testing.T) {
	var a *App
	if err := a.Run(); err == nil {
		t.Fatal("Run() on a nil app should fail")
	}
	if err := (&App{}).Run(); err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Fatalf("Run() error = %v", err)
	}
}
