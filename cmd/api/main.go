// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Command api is the entry point for the MPI attendance HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (sessions, and the KV store when selected).
//  4. Connect to PostgreSQL and run migrations when KV_BACKEND=postgres.
//  5. Wire domain services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasminaramim/mpi-attendence-management/internal/api"
	"github.com/jasminaramim/mpi-attendence-management/internal/attendance"
	"github.com/jasminaramim/mpi-attendence-management/internal/complaint"
	"github.com/jasminaramim/mpi-attendence-management/internal/dashboard"
	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/leave"
	"github.com/jasminaramim/mpi-attendence-management/internal/notice"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/blob"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/config"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/migration"
	pgstore "github.com/jasminaramim/mpi-attendence-management/internal/platform/postgres"
	redisstore "github.com/jasminaramim/mpi-attendence-management/internal/platform/redis"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("kv_backend", cfg.KVBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	// Refresh-token sessions always live in Redis so their TTLs are native.
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. KV Store Backend ───────────────────────────────────────────────
	var store kv.Store
	checkDatabase := (func() error)(nil)

	switch cfg.KVBackend {
	case config.KVBackendPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		store = kv.NewPostgresStore(pool)
		checkDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	default:
		store = kv.NewRedisStore(rdb)
	}

	// ── 5. Platform Services ──────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	campusClock, err := clock.NewCampus(cfg.AttendanceTimezone)
	must(log, err, "initialize campus clock")

	// Object storage is optional; profile image uploads are disabled without it.
	var imageStorage identity.ImageStorage
	if cfg.S3Bucket != "" {
		storage, err := blob.NewStorage(startupCtx, blob.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		must(log, err, "initialize object storage")
		imageStorage = storage
	}

	// ── 6. Health Handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckDatabase: checkDatabase,
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	// Leave and roster seed per-student defaults at signup while reading user
	// profiles back through identity, so identity is built first and the
	// seeders are registered once both sides exist.
	sessionStore := identity.NewRedisSessionStore(rdb)
	identityService := identity.NewService(store, sessionStore, tokenService, imageStorage)

	leaveService := leave.NewService(store, identityService, campusClock)
	rosterService := roster.NewService(store, identityService, campusClock)
	identityService.RegisterSeeders(leaveService, rosterService)

	attendanceService := attendance.NewService(store, identityService, campusClock)
	noticeService := notice.NewService(store, identityService, campusClock)
	complaintService := complaint.NewService(store, identityService, campusClock)
	dashboardService := dashboard.NewService(identityService, attendanceService, leaveService, rosterService, campusClock)

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Identity:   identity.NewHandler(identityService),
		Attendance: attendance.NewHandler(attendanceService),
		Leave:      leave.NewHandler(leaveService),
		Notice:     notice.NewHandler(noticeService),
		Complaint:  complaint.NewHandler(complaintService),
		Roster:     roster.NewHandler(rosterService, identityService),
		Dashboard:  dashboard.NewHandler(dashboardService),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, tokenService, identityService, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
