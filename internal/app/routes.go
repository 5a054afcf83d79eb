package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/partsweb/internal/middleware"
	"github.com/simp-lee/partsweb/internal/module/auth"
	"github.com/simp-lee/partsweb/internal/pkg/page"
	"github.com/simp-lee/partsweb/internal/session"
	"github.com/simp-lee/partsweb/web"
)

// HomeRoute is where "/" and unknown page paths lead.
const HomeRoute = "/categories"

// CSRFFailureMessage is shown when a form is posted with a stale token.
const CSRFFailureMessage = "Sua sessão expirou. Recarregue a página e tente novamente."

// BackendPinger reports whether the REST backend answers.
type BackendPinger func(ctx context.Context) error

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules stay reachable without a token (login, logout).
	Public []Module
	// Guarded modules sit behind the auth guard.
	Guarded []Module

	Sessions      *session.Store
	SessionCookie session.CookieOptions
	Gate          *auth.Gate
	AuthRequired  bool
	Backend       BackendPinger
	Mode          string // "debug" or "release"
	CSRFSecret    string
	SecureCookies bool
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Guarded) == 0 {
		return errors.New("at least one guarded module is required")
	}
	if deps.Sessions == nil {
		return errors.New("session store is required")
	}
	if deps.Gate == nil {
		return errors.New("auth gate is required")
	}
	if strings.TrimSpace(deps.CSRFSecret) == "" {
		return errors.New("csrf secret is required")
	}

	if err := registerStaticRoutes(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}

	r.GET("/health", healthHandler(deps.Backend))

	pages := r.Group("/",
		session.Middleware(deps.Sessions, deps.SessionCookie),
		middleware.CSRF(middleware.CSRFConfig{
			Secret:    deps.CSRFSecret,
			Secure:    deps.SecureCookies,
			OnFailure: csrfFailure,
		}),
		deps.Gate.Context(),
	)
	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, HomeRoute)
	})

	for i, m := range deps.Public {
		if m == nil {
			return fmt.Errorf("public module at index %d is nil", i)
		}
		m.RegisterRoutes(pages)
	}

	guarded := pages.Group("", deps.Gate.RequireAuth(deps.AuthRequired))
	for i, m := range deps.Guarded {
		if m == nil {
			return fmt.Errorf("guarded module at index %d is nil", i)
		}
		m.RegisterRoutes(guarded)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

// csrfFailure shows the stale-token warning instead of a bare 403.
func csrfFailure(c *gin.Context, _ string) {
	page.Warn(c, http.StatusForbidden, CSRFFailureMessage)
}

// healthHandler reports the process status and whether the backend answers.
// Any HTTP answer, even an error status, counts as reachable.
func healthHandler(backend BackendPinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		backendStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if backend == nil {
			backendStatus = "unknown"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := backend(ctx); err != nil {
				backendStatus = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"backend": backendStatus,
			},
		})
	}
}

// noRouteHandler sends browsers that open an unknown page to the home page.
// Missing assets and non-GET requests get a 404.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method == http.MethodGet && !strings.HasPrefix(path, "/static/") && acceptsHTML(c) {
			c.Redirect(http.StatusFound, HomeRoute)
			return
		}
		renderError(c, http.StatusNotFound, "not found")
	}
}

func registerStaticRoutes(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		debugStaticFS, err := resolveDebugStaticFS()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		fileServer := http.StripPrefix("/static", http.FileServer(http.FS(debugStaticFS)))
		r.GET("/static/*filepath", func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", cacheStaticHandler(http.FS(staticFS)))
	return nil
}

func resolveDebugStaticFS() (fs.FS, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("resolve current file path")
	}

	projectRoot := filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", ".."))
	staticDir := filepath.Join(projectRoot, "web", "static")
	if _, err := os.Stat(staticDir); err != nil {
		return nil, fmt.Errorf("stat static directory %q: %w", staticDir, err)
	}

	return os.DirFS(staticDir), nil
}

// cacheStaticHandler serves embedded assets with a one-day Cache-Control.
func cacheStaticHandler(fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
