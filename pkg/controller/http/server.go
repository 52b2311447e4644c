// Package http exposes report generation and retrieval over HTTP.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rmts-health/rmts/pkg/interfaces"
)

// Server routes report requests to the use case
type Server struct {
	uc         interfaces.ReportUseCase
	corsOrigin string
	router     chi.Router
}

type Option func(*Server)

// WithCORSOrigin allows browser calls with credentials from origin. Empty disables CORS
// headers.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

func New(uc interfaces.ReportUseCase, opts ...Option) *Server {
	s := &Server{uc: uc}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if s.corsOrigin != "" {
		r.Use(cors(s.corsOrigin))
	}

	r.Get("/health", s.health)
	r.Post("/generate_report", s.generateReport)
	r.Get("/reports/{patientId}/{reportId}", s.getReport)
	r.Get("/reports/{patientId}/{reportId}/document", s.downloadReport)
	r.Get("/api/reports/patient/{patientId}", s.listReports)
	r.Get("/api/reports/patient/{patientId}/index.xlsx", s.exportIndex)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
