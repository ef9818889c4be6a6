// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jasminaramim/mpi-attendence-management/internal/attendance"
	"github.com/jasminaramim/mpi-attendence-management/internal/complaint"
	"github.com/jasminaramim/mpi-attendence-management/internal/dashboard"
	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/leave"
	"github.com/jasminaramim/mpi-attendence-management/internal/notice"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/config"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/middleware"
	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Identity handles signup, login, sessions, and account administration.
	Identity *identity.Handler

	// Attendance handles check-in/check-out and record corrections.
	Attendance *attendance.Handler

	// Leave handles applications and balances.
	Leave *leave.Handler

	// Notice handles announcements and reactions.
	Notice *notice.Handler

	// Complaint handles student complaints and admin review.
	Complaint *complaint.Handler

	// Roster handles the staff directory and student assignments.
	Roster *roster.Handler

	// Dashboard handles admin aggregation views.
	Dashboard *dashboard.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// Authentication is attached globally: requests without a bearer token pass
// through anonymously, and each domain router decides per route whether an
// authenticated user or an admin is required.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, roles middleware.RoleSource, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix. The same
	// two guards are handed to every domain so admin checks always consult
	// the stored role.
	requireAuth := middleware.RequireAuth
	requireAdmin := middleware.RequireAdmin(roles)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Identity.Routes(requireAuth, requireAdmin))
		api.Mount("/attendance", h.Attendance.Routes(requireAuth, requireAdmin))
		api.Mount("/leave", h.Leave.Routes(requireAuth, requireAdmin))
		api.Mount("/notice", h.Notice.Routes(requireAuth, requireAdmin))
		api.Mount("/complaint", h.Complaint.Routes(requireAuth, requireAdmin))
		api.Mount("/roster", h.Roster.Routes(requireAuth, requireAdmin))
		api.Mount("/admin", h.Dashboard.Routes(requireAdmin))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
