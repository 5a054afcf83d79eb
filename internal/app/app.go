package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/partsweb/internal/apiclient"
	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/middleware"
	"github.com/simp-lee/partsweb/internal/module/auth"
	"github.com/simp-lee/partsweb/internal/module/category"
	"github.com/simp-lee/partsweb/internal/module/part"
	"github.com/simp-lee/partsweb/internal/module/vehiclemodel"
	"github.com/simp-lee/partsweb/internal/pkg"
	"github.com/simp-lee/partsweb/internal/session"
	"github.com/simp-lee/partsweb/web"
)

// App holds the wired web frontend and its HTTP server settings.
type App struct {
	engine   *gin.Engine
	sessions *session.Store
	logger   *logger.Logger
	cfg      *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, writeTimeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires the frontend from cfg: logger, session store, REST
// client, resource services, page modules, middleware, templates and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	env := cfg.Environment()
	log.Info("backend selected",
		slog.String("profile", cfg.Profile),
		slog.String("api_url", env.APIURL),
		slog.Bool("production", env.Production))

	// 2. Per-browser sessions, each with its own alert hub.
	sessions := session.NewStore(session.StoreOptions{
		TTL:             config.DurationOr(cfg.Session.TTL, 0),
		CleanupInterval: config.DurationOr(cfg.Session.CleanupInterval, 0),
		MaxSessions:     cfg.Session.MaxSessions,
		Logger:          log.Logger,
	})
	defer func() {
		if !success {
			_ = sessions.Close()
		}
	}()

	// 3. REST client. Interceptors run in the order listed, first outermost.
	client, err := apiclient.New(apiclient.Options{
		BaseURL: env.APIURL,
		Timeout: cfg.APITimeout(),
		Interceptors: []apiclient.Interceptor{
			apiclient.RequestID(middleware.RequestIDFromContext),
			apiclient.RequestLogging(log.Logger),
			apiclient.ErrorTranslation(nil, log.Logger),
			apiclient.BearerToken(nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("setup api client: %w", err)
	}

	if err := pkg.SetupValidator(); err != nil {
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	// 4. Manual dependency injection: client -> service -> handler -> module.
	secureCookies := cfg.Server.Mode == gin.ReleaseMode
	gate := auth.NewGate(client, auth.GateOptions{
		CookieName: cfg.Auth.CookieName,
		MaxAge:     config.DurationOr(cfg.Auth.MaxAge, 24*time.Hour),
		Secure:     secureCookies,
		LoginPath:  cfg.Auth.LoginPath,
	})
	categories := category.NewService(client)
	models := vehiclemodel.NewService(client)
	parts := part.NewService(client)

	public := []Module{
		auth.NewModule(auth.NewHandler(gate, log.Logger)),
	}
	guarded := []Module{
		category.NewModule(category.NewHandler(categories, log.Logger)),
		part.NewModule(part.NewHandler(parts, categories, models, log.Logger)),
		vehiclemodel.NewModule(vehiclemodel.NewHandler(models, log.Logger)),
	}

	// 5. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger, "/static/", "/health"),
		middleware.CORS(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
	)

	// 6. Templates: embedded in release, read from disk per render in debug.
	debug := cfg.Server.Mode == gin.DebugMode
	var fsys fs.FS = web.EmbeddedFS
	if debug {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	// 7. CSRF secret.
	csrfSecret := cfg.Server.CSRFSecret
	if isPlaceholderCSRFSecret(csrfSecret) {
		if cfg.Server.Mode == gin.ReleaseMode {
			return nil, errors.New("csrf_secret must be a non-placeholder value in release mode")
		}

		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate csrf secret: %w", err)
		}
		csrfSecret = hex.EncodeToString(b)
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	}

	// 8. Routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Public:   public,
		Guarded:  guarded,
		Sessions: sessions,
		SessionCookie: session.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: secureCookies,
		},
		Gate:          gate,
		AuthRequired:  cfg.Auth.Required,
		Backend:       backendPinger(env.APIURL),
		Mode:          cfg.Server.Mode,
		CSRFSecret:    csrfSecret,
		SecureCookies: secureCookies,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:   engine,
		sessions: sessions,
		logger:   log,
		cfg:      cfg,
	}, nil
}

// backendPinger probes the backend with a bare client, so health checks
// neither publish alerts nor forward tokens. Any HTTP answer means the
// backend is reachable.
func backendPinger(baseURL string) BackendPinger {
	client, err := apiclient.New(apiclient.Options{BaseURL: baseURL, Timeout: 2 * time.Second})
	if err != nil {
		return func(context.Context) error { return err }
	}
	return func(ctx context.Context) error {
		err := client.Do(ctx, http.MethodGet, "", "", nil, nil, nil)
		if err != nil && domain.HTTPStatus(err) == 0 {
			return err
		}
		return nil
	}
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}

	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

// resolveCORSConfig overlays the configured CORS settings on the defaults.
// In release mode, when no allowlist is configured, cross-origin requests are
// denied.
func resolveCORSConfig(mode string, cfg config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	corsConfig.MaxAge = config.DurationOr(cfg.MaxAge, corsConfig.MaxAge)

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Handler exposes the engine, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// Shutdown is graceful with a 5-second deadline; the session store and the
// logger are closed afterwards.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.DurationOr(a.cfg.Server.Timeout, 60*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			log.Error("session store close error", slog.Any("error", err))
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
