// Package server assembles the application: storage, services, router.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goalspark/internal/domain/activity"
	"goalspark/internal/domain/analytics"
	"goalspark/internal/domain/auth"
	"goalspark/internal/domain/demo"
	"goalspark/internal/domain/goals"
	"goalspark/internal/domain/team"
	"goalspark/internal/platform/config"
	"goalspark/internal/platform/db"
	"goalspark/internal/platform/email"
	"goalspark/internal/platform/metrics"
	activitieshandler "goalspark/internal/transport/http/handlers/activities"
	analyticshandler "goalspark/internal/transport/http/handlers/analytics"
	authhandler "goalspark/internal/transport/http/handlers/auth"
	demohandler "goalspark/internal/transport/http/handlers/demo"
	goalshandler "goalspark/internal/transport/http/handlers/goals"
	teamhandler "goalspark/internal/transport/http/handlers/team"
	"goalspark/internal/transport/http/middleware"
	"goalspark/migrations"
)

type App struct {
	Cfg     config.Config
	Pool    *pgxpool.Pool
	Router  chi.Router
	Metrics *metrics.Collector
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Cfg: cfg, Pool: pool, Metrics: metrics.New()}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) buildRouter() chi.Router {
	cfg := a.Cfg

	userStore := auth.NewStore(a.Pool)
	teamStore := team.NewStore(a.Pool)
	activityStore := activity.NewStore(a.Pool)
	goalStore := goals.NewStore(a.Pool)

	activityService := activity.NewService(activityStore)
	teamService := team.NewService(teamStore)
	goalService := goals.NewService(goalStore, activityService, teamService)
	analyticsService := analytics.NewService(goalStore, activityStore, teamStore)
	generator := demo.NewGenerator(userStore, teamStore, goalService)
	mailer := email.New(cfg)

	authH := authhandler.NewHandler(userStore, mailer, cfg)
	goalsH := goalshandler.NewHandler(goalService, a.Metrics)
	activitiesH := activitieshandler.NewHandler(activityService)
	teamH := teamhandler.NewHandler(teamService)
	analyticsH := analyticshandler.NewHandler(analyticsService)
	demoH := demohandler.NewHandler(generator)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, userStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metricsz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(a.Metrics.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.HandleRegister)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/forgot-password", authH.HandleForgotPassword)
		r.Post("/auth/reset-password", authH.HandleResetPassword)
		r.Get("/managers", authH.HandleManagers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", authH.HandleMe)
			r.Post("/auth/mfa/setup", authH.HandleMFASetup)
			r.Post("/auth/mfa/enable", authH.HandleMFAEnable)
			r.Post("/auth/mfa/disable", authH.HandleMFADisable)

			r.Get("/goals", goalsH.HandleList)
			r.Get("/goals/{goalID}", goalsH.HandleGet)
			r.Post("/goals/{goalID}/progress", goalsH.HandleRecordProgress)
			r.Get("/goals/{goalID}/progress", goalsH.HandleProgressHistory)
			r.Get("/goals/{goalID}/comment-prompt", goalsH.HandleCommentPrompt)

			r.Get("/activities", activitiesH.HandleList)
			r.Get("/activities/unread-count", activitiesH.HandleUnreadCount)
			r.Post("/activities/mark-seen", activitiesH.HandleMarkSeen)

			r.Get("/analytics/dashboard", analyticsH.HandleDashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/goals", goalsH.HandleCreate)
			r.Post("/goals/assign-by-role", goalsH.HandleAssignByRole)
			r.Put("/goals/{goalID}", goalsH.HandleUpdate)

			r.Get("/team", teamH.HandleList)
			r.Put("/team/{memberID}", teamH.HandleUpdateMember)
			r.Get("/roles", teamH.HandleRoles)

			r.Get("/analytics/report.pdf", analyticsH.HandleReportPDF)
			r.Post("/demo/generate-data", demoH.HandleGenerate)
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return router
}

func (a *App) Run() error {
	log.Printf("%s listening on %s", a.Cfg.AppName, a.Cfg.Addr)
	return http.ListenAndServe(a.Cfg.Addr, a.Router)
}

func (a *App) Close() {
	a.Pool.Close()
}

// spaHandler serves the built frontend, falling back to index.html so
// client-side routes resolve.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
