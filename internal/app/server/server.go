package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"speakup/internal/domain/audit"
	"speakup/internal/domain/report"
	"speakup/internal/platform/config"
	"speakup/internal/platform/crypto"
	"speakup/internal/platform/db"
	"speakup/internal/platform/metrics"
	audithandler "speakup/internal/transport/http/handlers/audit"
	reporthandler "speakup/internal/transport/http/handlers/report"
	trackhandler "speakup/internal/transport/http/handlers/track"
	"speakup/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	vault, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("encryption key rejected", "err", err)
		os.Exit(1)
	}
	ids, err := report.NewIDGenerator(cfg.AnonIDSecret)
	if err != nil {
		slog.Error("anonymous id secret rejected", "err", err)
		os.Exit(1)
	}

	collector := metrics.New()

	trail := audit.NewTrail(audit.NewPGStore(pool), cfg.AuditJournalPath)
	trail.SetAlertHooks(collector.AuditFallbacks.Inc, collector.AuditDropped.Inc)

	service := report.NewService(report.NewPGStore(pool), vault, trail, ids)
	service.StorageDir = cfg.StorageDir
	service.AdvanceOnNote = cfg.AdvanceOnNote
	service.SetHooks(report.Hooks{
		AccessDenied:   collector.AccessDenied.Inc,
		DecryptFailure: collector.DecryptFailures.Inc,
		Submission: func(severity report.Severity) {
			collector.Submissions.WithLabelValues(string(severity)).Inc()
		},
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SubmissionRateLimit(cfg.RateLimitPerMinute, time.Minute))

		reporthandler.NewHandler(service).RegisterRoutes(r)
		trackhandler.NewHandler(service).RegisterRoutes(r)
		audithandler.NewHandler(service).RegisterRoutes(r)
	})

	slog.Info("speakup server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
