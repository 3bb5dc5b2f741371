// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/newsboard/internal/auth"
	"github.com/olegiv/newsboard/internal/cache"
	"github.com/olegiv/newsboard/internal/config"
	"github.com/olegiv/newsboard/internal/handler"
	"github.com/olegiv/newsboard/internal/logging"
	"github.com/olegiv/newsboard/internal/middleware"
	"github.com/olegiv/newsboard/internal/render"
	"github.com/olegiv/newsboard/internal/scheduler"
	"github.com/olegiv/newsboard/internal/service"
	"github.com/olegiv/newsboard/internal/session"
	"github.com/olegiv/newsboard/internal/store"
	"github.com/olegiv/newsboard/internal/version"
	"github.com/olegiv/newsboard/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Registration is throttled per IP; login has its own protection.
const (
	registerRPS   = 0.2
	registerBurst = 5
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Newsboard - a small news posting site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_STORE             Storage backend: json|sqlite (default: json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_DATA_DIR          JSON data directory (default: ./Database)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_DB_PATH           SQLite database path (default: ./data/newsboard.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_SERVER_PORT       Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_REDIS_URL         Redis URL for shared sessions (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSBOARD_DO_SEED           Create a demo user and post on an empty store\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.Long("newsboard"))
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)
	slog.Info("starting newsboard", "version", info.String(), "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing store", "error", err)
		}
	}()

	hasher := auth.NewHasher(cfg.BcryptCost)
	if cfg.DoSeed {
		if err := store.Seed(ctx, st, hasher, logger); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.UseRedisSessions() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	}

	sessionStore, kind := session.SelectStore(session.StoreOptions{
		Redis:       redisClient,
		RedisPrefix: cfg.SessionPrefix,
		DB:          db,
	})
	sm := session.New(sessionStore, cfg.SessionLifetime, cfg.IsDevelopment())
	sessions := session.NewManager(sm, cfg.RememberMeTTL, cfg.IsDevelopment())
	slog.Info("session manager initialized", "store", kind, "lifetime", cfg.SessionLifetime)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	users := service.NewUserService(st, hasher, logger)

	var nameBackend cache.Cache
	if redisClient != nil {
		nameBackend = cache.NewRedisCache(redisClient, "", cache.DefaultNameTTL)
	} else {
		nameBackend = cache.NewMemoryCache(cache.DefaultNameTTL, time.Minute)
	}
	defer func() { _ = nameBackend.Close() }()
	users.SetNameCache(cache.NewNameCache(nameBackend, cache.DefaultNameTTL))
	news := service.NewNewsService(st, logger)

	sched := scheduler.New(st, cfg.CounterAuditSchedule, logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	r := newRouter(cfg, routerDeps{
		sm:              sm,
		sessions:        sessions,
		users:           users,
		auth:            handler.NewAuthHandler(users, sessions, renderer, loginProtection),
		news:            handler.NewNewsHandler(news, users, renderer, cfg.HomeNewsLimit),
		cookies:         handler.NewCookieHandler(cfg.IsDevelopment()),
		health:          handler.NewHealthHandler(st, info),
		loginProtection: loginProtection,
		registerLimiter: middleware.NewRateLimiter(registerRPS, registerBurst),
		static:          staticFS,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openStore opens the configured backend. db is non-nil for SQLite only and
// doubles as the session store.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, *sql.DB, error) {
	if !cfg.UseSQLite() {
		slog.Info("using JSON store", "dir", cfg.DataDir)
		st, err := store.NewJSONStore(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening JSON store: %w", err)
		}
		return st, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")
	return store.NewSQLiteStore(db), db, nil
}

type routerDeps struct {
	sm              *scs.SessionManager
	sessions        *session.Manager
	users           *service.UserService
	auth            *handler.AuthHandler
	news            *handler.NewsHandler
	cookies         *handler.CookieHandler
	health          *handler.HealthHandler
	loginProtection *middleware.LoginProtection
	registerLimiter *middleware.RateLimiter
	static          fs.FS
}

func newRouter(cfg *config.Config, d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)

	r.Get(handler.RouteHealth, d.health.Health)

	// Static assets, cached for a week
	staticHandler := middleware.StaticCache(604800)(http.StripPrefix("/static/", http.FileServer(http.FS(d.static))))
	r.Handle(handler.RouteStatic, staticHandler)

	r.Group(func(r chi.Router) {
		r.Use(d.sm.LoadAndSave)
		r.Use(middleware.SkipCSRF(handler.RouteSetCookie, handler.RouteGetCookie, handler.RouteClearCookie))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret)[:32], cfg.IsDevelopment(), cfg.ServerPort)))
		r.Use(middleware.LoadIdentity(d.sessions, d.users))

		r.Get(handler.RouteRoot, d.news.Home)
		r.Get(handler.RouteNewsPage, d.news.NewsPage)
		r.Get(handler.RouteAPINewsPage, d.news.NewsPage)
		r.Get(handler.RouteLogin, d.auth.LoginForm)
		r.Get(handler.RouteRegister, d.auth.RegisterForm)
		r.Get(handler.RouteNewsPosting, d.news.PostingForm)

		r.With(d.registerLimiter.Middleware()).Post(handler.RouteAPIRegister, d.auth.Register)
		r.With(d.loginProtection.Middleware()).Post(handler.RouteAPILogin, d.auth.Login)
		r.Post(handler.RouteAPILogout, d.auth.Logout)
		r.With(middleware.RequireLogin(service.MsgAuthRequired)).Post(handler.RouteAPINewsPosting, d.news.Publish)

		// Cookie demo routes accept any method.
		r.HandleFunc(handler.RouteSetCookie, d.cookies.Set)
		r.HandleFunc(handler.RouteGetCookie, d.cookies.Get)
		r.HandleFunc(handler.RouteClearCookie, d.cookies.Clear)
	})

	return r
}
