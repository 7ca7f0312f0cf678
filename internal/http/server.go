package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/cinelog/cinelog/internal/auth"
	"github.com/cinelog/cinelog/internal/config"
	"github.com/cinelog/cinelog/internal/metadata"
	"github.com/cinelog/cinelog/internal/repository"
	"github.com/cinelog/cinelog/internal/reviews"
	"github.com/cinelog/cinelog/internal/store"
	"github.com/cinelog/cinelog/internal/watchlist"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	store     *store.Store
	repo      *repository.Repository
	reviews   *reviews.Service
	watchlist *watchlist.Manager
	tokens    *auth.TokenManager
	metadata  metadata.Client
	validate  *validator.Validate
	logger    *log.Logger
	router    chi.Router
	httpSrv   *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, reviewSvc *reviews.Service, watchlistMgr *watchlist.Manager, tokens *auth.TokenManager, metaClient metadata.Client, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}
	if metaClient == nil {
		metaClient = metadata.Noop{}
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		repo:      repo,
		reviews:   reviewSvc,
		watchlist: watchlistMgr,
		tokens:    tokens,
		metadata:  metaClient,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		router:    r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.Get("/{id}", s.handleGetMovie)
			r.Get("/{id}/reviews", s.handleListMovieReviews)
			r.With(s.requireAuth).Post("/{id}/reviews", s.handleCreateReview)
			r.With(s.requireAuth, s.requireAdmin).Post("/", s.handleCreateMovie)
			r.With(s.requireAuth, s.requireAdmin).Delete("/{id}", s.handleDeleteMovie)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/{id}", s.handleUpdateReview)
			r.Delete("/{id}", s.handleDeleteReview)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(s.requireAuth).Get("/profile", s.handleProfile)
			r.With(s.requireAuth).Get("/watchlist", s.handleGetWatchlist)
			r.With(s.requireAuth).Post("/watchlist/{movieId}", s.handleAddToWatchlist)
			r.With(s.requireAuth).Delete("/watchlist/{movieId}", s.handleRemoveFromWatchlist)
			r.Get("/{id}", s.handleGetUser)
			r.With(s.requireAuth).Put("/{id}", s.handleUpdateUser)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Get("/users", s.handleAdminListUsers)
			r.Get("/reviews", s.handleAdminListReviews)
			r.Put("/reviews/{id}", s.handleUpdateReview)
			r.Delete("/reviews/{id}", s.handleDeleteReview)
			r.Put("/users/{id}/role", s.handleSetUserRole)
			r.Delete("/users/{id}", s.handleAdminDeleteUser)
		})
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
