// Package reviewcms is a small headless content store for game reviews built
// with Go and Echo. It serves a content-API compatible query endpoint over an
// in-memory snapshot of the reviews held in SQLite, plus an RSS feed, a
// sitemap, uploaded cover images and a password-protected admin API.
package reviewcms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/reviewcms/query"
)

// App is the central reviewcms application. It wires together the store,
// the record snapshot, the query engine, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *RecordCache
	Engine *query.Engine
	Logger *zap.Logger

	// feedEngine orders text keys by direction so feeds list newest first.
	feedEngine   *query.Engine
	loginLimiter *LoginLimiter
	metrics      *prometheus.Registry
	queries      *prometheus.CounterVec
	customRoutes []func(*App)
	routesOnce   sync.Once
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the logger, store, seed data, snapshot cache and query
// engine. Start calls it; tests call it directly.
func (a *App) Open() error {
	if a.Config.AdminPassword != "" && a.Config.SessionSecret == "" {
		return fmt.Errorf("reviewcms: SessionSecret is required when AdminPassword is set")
	}

	if a.Logger == nil {
		logger, err := NewLogger(a.Config.LogLevel, a.Config.LogFormat)
		if err != nil {
			return err
		}
		a.Logger = logger
	}

	if a.Engine == nil {
		opts, err := a.Config.EngineOptions()
		if err != nil {
			return err
		}
		a.Engine = query.New(opts...)
	}
	a.feedEngine = query.New(
		query.WithUploadPrefix(a.Config.UploadPrefix),
		query.WithDirectionalText(true),
	)

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("reviewcms: init store: %w", err)
	}
	a.Store = store

	n, err := SeedIfEmpty(a.Store, a.Config.SeedPath)
	if err != nil {
		return fmt.Errorf("reviewcms: seed store: %w", err)
	}
	if n > 0 {
		a.Logger.Info("seeded review store", zap.Int("reviews", n), zap.String("path", a.Config.SeedPath))
	}

	a.Cache = NewRecordCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.metrics = prometheus.NewRegistry()
	a.queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewcms",
		Name:      "queries_total",
		Help:      "Collection queries processed, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	a.metrics.MustRegister(a.queries)
	return nil
}

// Handler sets up middleware and routes once and returns the HTTP handler.
func (a *App) Handler() http.Handler {
	a.routesOnce.Do(func() {
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
	return a.Echo
}

// Start opens the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Open(); err != nil {
		return err
	}
	return a.Serve()
}

// Serve listens on the configured address until the server is shut down.
// Open must have been called.
func (a *App) Serve() error {
	a.Handler()
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/"+a.uploadsDir(), filepath.Join(a.Config.StaticDir, a.uploadsDir()))
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", a.metricsHandler())

	// Content API
	e.GET("/api/reviews", a.handleReviews)
	e.GET("/api/search", a.handleSearch)

	// Feeds
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	if a.Config.AdminPassword == "" {
		return
	}
	e.GET("/admin/csrf/", handleCSRFToken)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	admin := e.Group("/admin", requireAdmin)
	admin.POST("/revalidate/", a.handleRevalidate)
	admin.POST("/import/", a.handleImport)
	admin.DELETE("/reviews/:slug/", a.handleAdminDelete)
	admin.GET("/images/", a.handleImageList)
	admin.POST("/images/upload/", a.handleImageUpload)
	admin.DELETE("/images/:filename/", a.handleImageDelete)
}

// uploadsDir is the upload prefix as a bare directory name, e.g. "uploads".
func (a *App) uploadsDir() string {
	return strings.Trim(a.Config.UploadPrefix, "/")
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
