// Package web implements the portal views: list, detail, create, edit and
// login. Every screen is rendered server-side from the datastore's responses;
// the datastore itself enforces nothing, all gating and validation happens
// here.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"newsweb/api"
	"newsweb/ident"
)

// Server renders the portal.
type Server struct {
	client   *api.Client
	idents   *ident.Store
	pageSize int
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize sets the default page size for the list view.
func WithPageSize(size int) Option {
	return func(s *Server) {
		s.pageSize = size
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a portal server over the given datastore client and
// identity store.
func NewServer(client *api.Client, idents *ident.Store, opts ...Option) *Server {
	s := &Server{
		client:   client,
		idents:   idents,
		pageSize: 5,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the portal's handler with request logging attached.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/news", http.StatusFound)
	})

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /news", s.handleList)
	mux.HandleFunc("GET /news/new", s.handleCreatePage)
	mux.HandleFunc("POST /news/new", s.handleCreate)
	mux.HandleFunc("GET /news/{id}", s.handleDetail)
	mux.HandleFunc("POST /news/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /news/{id}/edit", s.handleEditPage)
	mux.HandleFunc("POST /news/{id}/edit", s.handleEdit)
	mux.HandleFunc("POST /news/{id}/delete", s.handleDelete)

	return s.logRequests(mux)
}

// statusWriter records the response status for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info("request",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
