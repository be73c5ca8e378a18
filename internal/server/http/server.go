// Package httpserver exposes the sealnote JSON API handlers.
package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/m-yakovlev/sealnote/internal/service"
)

// Server wires the note service into HTTP handlers.
type Server struct {
	mux            *http.ServeMux
	notes          service.NoteService
	log            *zap.Logger
	maxBody        int64
	restrictDelete bool
}

// Option configures the server.
type Option func(*Server)

// WithMaxBody caps the request body size in bytes.
func WithMaxBody(n int64) Option { return func(s *Server) { s.maxBody = n } }

// WithRestrictedDelete makes DELETE require the deletion token from create.
func WithRestrictedDelete() Option { return func(s *Server) { s.restrictDelete = true } }

// New constructs the API server with injected dependencies.
func New(notes service.NoteService, log *zap.Logger, opts ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		notes:   notes,
		log:     log,
		maxBody: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/notes", s.handleCreate)
	s.mux.HandleFunc("GET /api/notes/{id}", s.handleRead)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the mux wrapped with recover and logging middleware.
func (s *Server) Handler() http.Handler {
	return Recover(s.log)(Logging(s.log)(s.mux))
}
