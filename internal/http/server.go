package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spesetracker/internal/core"
	"spesetracker/internal/log"
	"spesetracker/internal/middleware/security"
)

// Repository is the part of the expense repository the handlers use.
type Repository interface {
	Loaded() bool
	Expenses() []core.Expense
	Find(id string) (core.Expense, bool)
	AddExpense(in core.ExpenseInput) (core.Expense, error)
	UpdateExpense(id string, patch core.Patch) (core.Expense, bool, error)
	DeleteExpense(id string) (bool, error)
}

type Server struct {
	http.Server
	repo       Repository
	categories core.Categories
	logger     *log.Logger
}

// NewServer wires the JSON API in front of repo. The server answers 503 on
// /api routes until the repository reports it is loaded.
func NewServer(addr string, repo Repository, categories core.Categories, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		repo:       repo,
		categories: categories,
		logger:     logger.WithComponent(log.ComponentHTTP),
	}
	s.Addr = addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware)
	r.Use(log.AccessLogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireLoaded)
		r.Get("/categories", s.handleCategories)
		r.Get("/summary", s.handleSummary)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Patch("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such route").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed").Write(w)
	})

	return r
}

// requireLoaded keeps clients from seeing the empty pre-load collection.
func (s *Server) requireLoaded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.repo.Loaded() {
			ServiceUnavailableError("expenses are still loading").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.repo.Loaded() {
		ServiceUnavailableError("loading").Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
