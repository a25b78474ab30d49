// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/hustlehub/marketplace/internal/action"
	"github.com/hustlehub/marketplace/internal/clipping"
	clippingpostgres "github.com/hustlehub/marketplace/internal/clipping/postgres"
	"github.com/hustlehub/marketplace/internal/config"
	"github.com/hustlehub/marketplace/internal/courses"
	coursespostgres "github.com/hustlehub/marketplace/internal/courses/postgres"
	"github.com/hustlehub/marketplace/internal/dashboard"
	"github.com/hustlehub/marketplace/internal/identity"
	"github.com/hustlehub/marketplace/internal/identity/jwt"
	identitypostgres "github.com/hustlehub/marketplace/internal/identity/postgres"
	"github.com/hustlehub/marketplace/internal/news"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"github.com/hustlehub/marketplace/internal/pkg/httputil"
	"github.com/hustlehub/marketplace/internal/pkg/metrics"
	"github.com/hustlehub/marketplace/internal/pkg/postgres"
	"github.com/hustlehub/marketplace/internal/thrift"
	thriftpostgres "github.com/hustlehub/marketplace/internal/thrift/postgres"
	"github.com/hustlehub/marketplace/internal/version"
	"github.com/hustlehub/marketplace/internal/view"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	redis         *redis.Client
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			db.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		redis:         rdb,
		metricsCancel: metricsCancel,
	}

	go metrics.CollectDBPoolMetrics(metricsCtx, db, 15*time.Second)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"version", version.Version,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	a.db.Close()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter() *chi.Mux {
	cfg := a.config

	var (
		registry  view.Registry
		newsCache news.Cache
	)
	if a.redis != nil {
		registry = view.NewRedisRegistry(a.redis)
		newsCache = news.NewRedisCache(a.redis)
	} else {
		registry = view.NewMemoryRegistry()
		newsCache = news.NewMemoryCache()
	}
	slog.Info("view registry configured", "shared", a.redis != nil)

	runner := action.NewRunner(registry)
	pages := view.NewCache(registry, view.CacheConfig{})

	authClient := identity.NewAuthClient(identity.AuthClientConfig{
		StoreURL: cfg.Auth.StoreURL,
		AnonKey:  cfg.Auth.AnonKey,
	})
	identityService := identity.NewService(identitypostgres.NewRepository(a.db), authClient, runner)
	gate := identityService.Gate()
	resolver := identity.NewResolver(jwt.NewVerifier(jwt.Config{
		SecretKey: cfg.Auth.JWTSecret,
		Audience:  cfg.Auth.JWTAudience,
		Leeway:    30 * time.Second,
	}), cfg.Auth.AccessCookie)
	identityHandler := identity.NewHandler(identityService, pages, identity.CookieSettings{
		AccessCookie:  cfg.Auth.AccessCookie,
		RefreshCookie: cfg.Auth.RefreshCookie,
		Secure:        cfg.Auth.CookieSecure,
		Domain:        cfg.Auth.CookieDomain,
	}, cfg.Auth.StoreURL)

	coursesService := courses.NewService(coursespostgres.NewRepository(a.db), gate, runner)
	coursesHandler := courses.NewHandler(coursesService, pages)

	clippingService := clipping.NewService(clippingpostgres.NewRepository(a.db), gate, runner)
	clippingHandler := clipping.NewHandler(clippingService, pages)

	thriftService := thrift.NewService(thriftpostgres.NewRepository(a.db), gate, runner)
	thriftHandler := thrift.NewHandler(thriftService, pages)

	newsService := news.NewService(news.NewClient(news.ClientConfig{
		BaseURL: cfg.News.BaseURL,
		APIKey:  cfg.News.APIKey,
		Timeout: cfg.News.Timeout,
		RPS:     cfg.News.UpstreamRPS,
	}), newsCache, max(cfg.News.APICacheTTL, cfg.News.PageCacheTTL))
	newsHandler := news.NewHandler(newsService, cfg.News.APICacheTTL, cfg.News.PageCacheTTL)

	dashboardHandler := dashboard.NewHandler(dashboard.Counters{
		Courses:      coursesService.Count,
		ThriftItems:  thriftService.Count,
		ClippingJobs: clippingService.CountJobs,
	}, gate, pages)

	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(httputil.SessionMiddleware(resolver))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	// Public pages
	identityHandler.RegisterPublicPageRoutes(r)
	coursesHandler.RegisterPublicPageRoutes(r)
	clippingHandler.RegisterPublicPageRoutes(r)
	newsHandler.RegisterPageRoutes(r)

	// Pages behind a session
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuthenticatedPage)

		dashboardHandler.RegisterPageRoutes(r)
		identityHandler.RegisterPageRoutes(r)
		coursesHandler.RegisterPageRoutes(r)
		clippingHandler.RegisterPageRoutes(r)
		thriftHandler.RegisterPageRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRolePage(clipping.CreatorRoles...))
			clippingHandler.RegisterCreatorPageRoutes(r)
		})
	})

	// Form actions gate themselves so that failures map to redirects.
	identityHandler.RegisterActionRoutes(r)
	coursesHandler.RegisterActionRoutes(r)
	clippingHandler.RegisterActionRoutes(r)
	thriftHandler.RegisterActionRoutes(r)

	r.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		coursesHandler.RegisterAPIRoutes(r)
		clippingHandler.RegisterAPIRoutes(r)
		thriftHandler.RegisterAPIRoutes(r)
		newsHandler.RegisterAPIRoutes(r)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
			httputil.Text(w, http.StatusServiceUnavailable, "Cache unavailable")
			return
		}
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, version.Info())
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
