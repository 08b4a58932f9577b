package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/authapi/apiserver/config"
	"github.com/authapi/apiserver/internal/auth"
	"github.com/authapi/apiserver/internal/db"
	"github.com/authapi/apiserver/internal/handlers"
	"github.com/authapi/apiserver/internal/metrics"
	"github.com/authapi/apiserver/internal/middleware"
	"github.com/authapi/apiserver/internal/services"
	"github.com/authapi/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with all dependencies wired. Missing JWT
// configuration is a startup error; the server never begins serving
// without a signing key, issuer, and audience.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	authService := services.NewAuthService(userRepo, tokens)

	// One counter for the process lifetime, passed by handle to the
	// middleware and the summary handler.
	counter := metrics.NewCounter()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "authapi").Logger()

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Timeout(60*time.Second),
		middleware.CORS(cfg.CORSOrigin),
		middleware.Monitoring(counter, log),
	)

	requireAuth := handlers.RequireAuth(tokens)
	metricsHandler := handlers.NewMetricsHandler(counter, userRepo, router)

	router.Get("/health", handlers.Health)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	router.With(requireAuth).Get("/me", handlers.Me)
	router.With(requireAuth).Get("/metrics/summary", metricsHandler.Summary)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
