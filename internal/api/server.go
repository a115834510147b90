// Copyright (c) 2026 CoPla. All rights reserved.

// Package api assembles the CoPla HTTP surface: one chi router with the
// middleware chain, the health endpoints, the OAuth client document and every
// /api route.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/core/commission"
	"github.com/copla/copla/internal/core/tag"
	"github.com/copla/copla/internal/platform/config"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/middleware"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/internal/social/profile"
	"github.com/copla/copla/internal/users/account"
	"github.com/copla/copla/internal/users/auth"
)

// Server owns the router and the [http.Server] listening on SERVER_PORT.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers is everything cmd/api wires into the router.
type Handlers struct {
	Liveness       http.HandlerFunc
	Readiness      http.HandlerFunc
	ClientMetadata http.HandlerFunc

	Auth       *auth.Handler
	Account    *account.Handler
	Artist     *artist.Handler
	Commission *commission.Handler
	Social     *profile.Handler
	Following  *following.Handler
	Tag        *tag.Handler
}

// routeSet mounts handlers under a shared prefix.
type routeSet interface {
	RegisterRoutes(router chi.Router)
}

/*
NewServer builds the router.

Route map:
  - GET /health, /ready and /client-metadata.json at the root
  - /api/register and /api/auth/* behind the stricter auth rate limit
  - /api/users/{username}/... for accounts, artists, cards, social links and following
  - /api/tags for the tag vocabulary

The rate limiter sweeper stops when context is cancelled.
*/
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.SessionVerifier, h Handlers) *Server {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(log),
		chimw.Timeout(constants.GlobalRequestTimeout),
		middleware.RateLimit(context, middleware.DefaultLimit),
		middleware.PanicRecovery(log),
		middleware.CORS(cfg),
		middleware.Authenticate(verifier),
		chimw.CleanPath,
	)

	router.Get("/health", h.Liveness)
	router.Get("/ready", h.Readiness)
	router.Get("/client-metadata.json", h.ClientMetadata)

	router.Route("/api", func(api chi.Router) {
		api.Group(func(authRoutes chi.Router) {
			authRoutes.Use(middleware.RateLimit(context, middleware.AuthLimit))
			h.Auth.RegisterRoutes(authRoutes)
		})

		api.Route("/users", func(users chi.Router) {
			for _, routes := range []routeSet{h.Account, h.Artist, h.Commission, h.Social, h.Following} {
				routes.RegisterRoutes(users)
			}
		})

		api.Route("/tags", h.Tag.RegisterRoutes)
	})

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		},
	}
}

// Handler exposes the router to tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. After Shutdown it returns
// [http.ErrServerClosed].
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits up to timeout for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
