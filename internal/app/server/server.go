package server

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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gdp/internal/domain/assistant"
	"gdp/internal/domain/audit"
	"gdp/internal/domain/auth"
	"gdp/internal/domain/banking"
	"gdp/internal/domain/employees"
	"gdp/internal/domain/fuel"
	"gdp/internal/domain/heladito"
	"gdp/internal/domain/loans"
	"gdp/internal/domain/payroll"
	"gdp/internal/domain/receivables"
	"gdp/internal/domain/reports"
	"gdp/internal/domain/subagents"
	"gdp/internal/platform/ai"
	"gdp/internal/platform/config"
	"gdp/internal/platform/crypto"
	"gdp/internal/platform/db"
	"gdp/internal/platform/email"
	"gdp/internal/platform/jobs"
	"gdp/internal/platform/metrics"
	"gdp/internal/platform/policy"
	"gdp/internal/platform/store"
	"gdp/internal/transport/http/api"
	assistanthandler "gdp/internal/transport/http/handlers/assistant"
	audithandler "gdp/internal/transport/http/handlers/audit"
	authhandler "gdp/internal/transport/http/handlers/auth"
	bankinghandler "gdp/internal/transport/http/handlers/banking"
	employeeshandler "gdp/internal/transport/http/handlers/employees"
	fuelhandler "gdp/internal/transport/http/handlers/fuel"
	heladitohandler "gdp/internal/transport/http/handlers/heladito"
	loanshandler "gdp/internal/transport/http/handlers/loans"
	payrollhandler "gdp/internal/transport/http/handlers/payroll"
	receivableshandler "gdp/internal/transport/http/handlers/receivables"
	reportshandler "gdp/internal/transport/http/handlers/reports"
	subagentshandler "gdp/internal/transport/http/handlers/subagents"
	"gdp/internal/transport/http/middleware"
	"gdp/internal/transport/http/shared"
)

type App struct {
	Config  config.Config
	Repo    store.Repository
	Metrics *metrics.Collector
	Router  http.Handler

	closers []func()
}

// Close stops the job worker and releases the database pool.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func Run() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown failed", "err", err)
		}
	}()

	slog.Info("GDP server listening", "addr", cfg.Addr, "inMemory", cfg.InMemory(), "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// New wires storage, services and routes. Without DATABASE_URL the app runs on the
// in-memory store.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString() + uuid.NewString()
		slog.Warn("JWT_SECRET not set; using an ephemeral secret, tokens will not survive a restart")
	}

	app := &App{Config: cfg, Metrics: metrics.New()}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	if cfg.InMemory() {
		slog.Warn("DATABASE_URL not set; data is kept in memory only")
		app.Repo = store.NewMemory()
	} else {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		app.Repo = store.NewPostgres(pool)
	}

	rules, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	if !sealer.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set; employee bank accounts are stored in clear")
	}
	gen, err := ai.New(ctx, ai.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Timeout: cfg.AITimeout}, app.Metrics)
	if err != nil {
		return nil, fmt.Errorf("ai client: %w", err)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	app.closers = append(app.closers, stopWorker)
	jobRunner := jobs.New(app.Repo, cfg.JobQueueSize)
	jobRunner.Start(workerCtx)

	authSvc := auth.NewService(app.Repo, sealer, cfg.JWTSecret, cfg.TokenTTL)
	if cfg.RunSeed {
		if err := db.Seed(ctx, app.Repo, authSvc, cfg); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	employeeSvc := employees.NewService(app.Repo, sealer)
	payrollSvc := payroll.NewService(payroll.NewCalculator(rules.Payroll), app.Repo, employeeSvc, jobRunner, email.New(cfg), app.Metrics)
	subagentSvc := subagents.NewService(app.Repo, app.Metrics)
	assistantSvc := assistant.NewService(gen, rules.MonthlyReport.IncomeSources)
	auditSvc := audit.New(app.Repo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Idempotency(app.Repo))
	router.Use(middleware.Audit(auditSvc, "/api/v1"))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.Repo.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.With(middleware.RequireArea("metrics")).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, app.Metrics.Snapshot(), shared.RequestID(r))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireArea("heladito"))
			heladitohandler.NewHandler(heladito.NewService(rules.Heladito, app.Repo)).RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireArea("company"))
			employeeshandler.NewHandler(employeeSvc).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollSvc, assistantSvc).RegisterRoutes(r)
			loanshandler.NewHandler(loans.NewService(app.Repo)).RegisterRoutes(r)
			fuelhandler.NewHandler(fuel.NewService(app.Repo)).RegisterRoutes(r)
			receivableshandler.NewHandler(receivables.NewService(app.Repo)).RegisterRoutes(r)
			bankinghandler.NewHandler(banking.NewService(app.Repo, app.Metrics), assistantSvc).RegisterRoutes(r)
			subagentshandler.NewHandler(subagentSvc, assistantSvc).RegisterRoutes(r)
			reportshandler.NewHandler(reports.NewService(rules.MonthlyReport, app.Repo, subagentSvc), assistantSvc).RegisterRoutes(r)
			assistanthandler.NewHandler(assistantSvc).RegisterRoutes(r)
			audithandler.NewHandler(auditSvc).RegisterRoutes(r)

			r.Get("/jobs/runs", func(w http.ResponseWriter, r *http.Request) {
				runs, err := jobRunner.Runs(r.Context())
				if err != nil {
					shared.Fail(w, r, err, "list job runs")
					return
				}
				api.Success(w, shared.Paginate(runs, shared.ParsePagination(r, 50, 500)), shared.RequestID(r))
			})
		})
	})

	app.Router = router
	ok = true
	return app, nil
}
