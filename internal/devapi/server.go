package devapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/middleware"
	"github.com/simp-lee/partsweb/internal/pkg"
)

// APIPrefix is the path every REST route lives under.
const APIPrefix = "/api/v1"

// Server is the wired development backend.
type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	tokens *TokenIssuer
	logger *logger.Logger
	cfg    *config.DevAPIConfig
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

// New wires the backend from cfg: logger, database, migrations, seed data,
// middleware and routes.
func New(cfg *config.DevAPIConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

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

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := pkg.SetupValidator(); err != nil {
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	ctx := context.Background()
	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	tokens, err := NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("setup token issuer: %w", err)
	}
	defer func() {
		if !success {
			tokens.Close()
		}
	}()
	authSvc := NewAuthService(store, tokens)
	if err := Seed(ctx, store, authSvc, cfg.Seed, log.Logger); err != nil {
		return nil, err
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(middleware.RequestIDConfig{TrustUpstream: true}),
		middleware.Logger(log.Logger, "/health"),
		corsHandler(),
	)

	registerRoutes(engine, store, NewAuthHandler(authSvc, log.Logger),
		NewCatalogHandler(store, log.Logger), RequireToken(tokens, cfg.Auth.RequireAuth))

	if cfg.Auth.RequireAuth {
		log.Info("bearer token required on catalog routes")
	}

	success = true
	return &Server{engine: engine, db: db, tokens: tokens, logger: log, cfg: cfg}, nil
}

// corsHandler accepts any origin, since the frontend runs on another port.
func corsHandler() gin.HandlerFunc {
	return ginx.NewChain().
		Use(ginx.CORS(
			ginx.WithAllowOrigins("*"),
			ginx.WithAllowHeaders("Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"),
			ginx.WithExposeHeaders("X-Request-ID"),
			ginx.WithMaxAge(24*time.Hour),
		)).
		Build()
}

func registerRoutes(r *gin.Engine, store *Store, auth *AuthHandler, catalog *CatalogHandler, guard gin.HandlerFunc) {
	r.GET("/health", healthHandler(store))

	api := r.Group(APIPrefix)
	api.POST("/auth/login", auth.Login)
	catalog.RegisterRoutes(api.Group("", guard))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.ErrorBody{Message: "Recurso não encontrado."})
	})
}

// healthHandler reports whether the database answers a ping.
func healthHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "degraded",
				"components": gin.H{"database": "error"},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"components": gin.H{"database": "ok"},
		})
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close releases the database and the logger without serving.
func (s *Server) Close() error {
	var errs []error
	if s.tokens != nil {
		s.tokens.Close()
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if s.logger != nil {
		errs = append(errs, s.logger.Close())
	}
	return errors.Join(errs...)
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// Shutdown is graceful with a 5-second deadline; the database and the logger
// are closed afterwards.
func (s *Server) Run() error {
	if s == nil {
		return errors.New("server is nil")
	}
	if s.cfg == nil || s.engine == nil {
		return errors.New("server is not initialized")
	}

	log := slog.Default()
	if s.logger != nil {
		log = s.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := newHTTPServer(addr, s.engine, config.DurationOr(s.cfg.Server.Timeout, 60*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("devapi started", slog.String("addr", addr), slog.String("api", APIPrefix))
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

	log.Info("devapi stopped")
	if err := s.Close(); err != nil {
		slog.Error("close error", slog.Any("error", err))
	}
	return runErr
}
