package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worklog/internal/domain/audit"
	"worklog/internal/domain/auth"
	"worklog/internal/domain/checklists"
	"worklog/internal/domain/identity"
	"worklog/internal/domain/leave"
	"worklog/internal/domain/notifications"
	"worklog/internal/domain/projects"
	"worklog/internal/domain/reports"
	"worklog/internal/domain/settings"
	"worklog/internal/domain/timesheets"
	"worklog/internal/domain/users"
	"worklog/internal/platform/config"
	"worklog/internal/platform/crypto"
	"worklog/internal/platform/email"
	"worklog/internal/platform/events"
	"worklog/internal/platform/jobs"
	"worklog/internal/platform/logging"
	"worklog/internal/platform/metrics"
	"worklog/internal/platform/storage"
	"worklog/internal/transport/http/api"
	adminhandler "worklog/internal/transport/http/handlers/admin"
	authhandler "worklog/internal/transport/http/handlers/auth"
	checklistshandler "worklog/internal/transport/http/handlers/checklists"
	leavehandler "worklog/internal/transport/http/handlers/leave"
	projectshandler "worklog/internal/transport/http/handlers/projects"
	timesheetshandler "worklog/internal/transport/http/handlers/timesheets"
	usershandler "worklog/internal/transport/http/handlers/users"
	"worklog/internal/transport/http/middleware"
)

const devJWTSecret = "worklog-dev-secret"

type App struct {
	Config config.Config
	Store  storage.Store
	Router http.Handler
	Jobs   *jobs.Service

	events  events.Publisher
	backend backend
}

// New wires storage, services and routes. Background jobs are not started;
// Run starts them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		zap.L().Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		be.close()
		return nil, fmt.Errorf("encryption: %w", err)
	}
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		be.close()
		return nil, fmt.Errorf("authorization policy: %w", err)
	}

	store := be.store
	usersSvc := users.NewService(store)
	if err := seed(ctx, usersSvc, cfg); err != nil {
		be.close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	jobsSvc := jobs.New(256, 200)
	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	settingsSvc := settings.NewService(store)
	auditSvc := audit.New(store, cfg.AuditMaxEvents)
	notifier := notifications.New(usersSvc, settingsSvc, email.New(cfg), publisher, jobsSvc).WithMetrics(collector)
	notifier.DefaultFrom = cfg.EmailFrom

	identitySvc := identity.NewService(usersSvc, cryptoSvc, cfg.JWTSecret, cfg.TokenTTL)
	projectsSvc := projects.NewService(store)
	timesheetsSvc := timesheets.NewService(store, settingsSvc.Location)
	leaveSvc := leave.NewService(store, float64(cfg.DefaultTotalLeaves)).WithNotifier(notifier)
	performance := checklists.NewBook(checklists.Performance, store, cfg.DefaultShift, settingsSvc.Location)
	safety := checklists.NewBook(checklists.Safety, store, cfg.DefaultShift, settingsSvc.Location)

	var idemStore middleware.IdempotencyStore = middleware.NewMemoryIdempotencyStore()
	if be.redis != nil {
		idemStore = middleware.NewRedisIdempotencyStore(be.redis, cfg.RedisPrefix+"idem:")
	}

	policy := middleware.Policy{Enforcer: enforcer, Enforced: cfg.AuthEnforced}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(zap.L(), collector))
	router.Use(middleware.Recoverer(zap.L()))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := be.ready(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(identitySvc).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.AuthEnforced))
			usershandler.NewHandler(usersSvc, policy, auditSvc).RegisterRoutes(r)
			projectshandler.NewHandler(projectsSvc, policy, auditSvc).RegisterRoutes(r)
			timesheetshandler.NewHandler(timesheetsSvc, policy, notifier).RegisterRoutes(r)
			checklistshandler.NewHandler(performance, safety, policy).RegisterRoutes(r)
			leavehandler.NewHandler(leaveSvc, policy, auditSvc, notifier).
				WithIdempotency(middleware.Idempotency(idemStore, 24*time.Hour)).
				RegisterRoutes(r)
			adminhandler.NewHandler(settingsSvc, auditSvc, collector, jobsSvc, policy).
				WithReports(reports.NewService(usersSvc, projectsSvc, leaveSvc)).
				RegisterRoutes(r)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "NOT_FOUND", "Route not found", middleware.GetRequestID(r.Context()))
		})
	})

	if cfg.FrontendDir != "" {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Router:  router,
		Jobs:    jobsSvc,
		events:  publisher,
		backend: be,
	}, nil
}

// Close releases the event writer and the store connections.
func (a *App) Close() {
	if err := a.events.Close(); err != nil {
		zap.L().Warn("event publisher close failed", zap.Error(err))
	}
	a.backend.close()
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worklog server listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	app.Jobs.Wait()
}
