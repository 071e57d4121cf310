// Package web exposes the board and the portfolio content over a JSON API.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/access"
	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/kanban"
)

// Server holds the handlers' dependencies
type Server struct {
	board   *kanban.Service
	store   *db.Store
	auth    *access.Authenticator
	gate    access.Gate
	content *renderer
	cors    []string
	logger  *zap.Logger
}

// NewServer wires the HTTP API. gate defaults to access.RoleGate.
func NewServer(cfg config.ServerConfig, board *kanban.Service, store *db.Store, auth *access.Authenticator, gate access.Gate, logger *zap.Logger) *Server {
	if gate == nil {
		gate = access.RoleGate{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		board:   board,
		store:   store,
		auth:    auth,
		gate:    gate,
		content: newRenderer(),
		cors:    cfg.CORSOrigins,
		logger:  logger.Named("web"),
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(middleware.StripSlashes)
	if len(s.cors) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cors,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health/db", s.healthDB)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)

		r.Get("/home-sections", s.listHomeSections)
		r.Get("/projects", s.listProjects)
		r.Get("/projects/{id}", s.getProject)

		r.Group(func(r chi.Router) {
			r.Use(s.requireContentAdmin)
			r.Put("/home-sections", s.replaceHomeSections)
			r.Post("/projects", s.createProject)
			r.Put("/projects/{id}", s.updateProject)
		})

		r.Route("/kanban", func(r chi.Router) {
			r.Use(s.requireBoard)

			r.Get("/columns", s.listColumns)
			r.Post("/columns", s.createColumn)

			r.Get("/tickets", s.listTickets)
			r.Post("/tickets", s.createTicket)
			r.Get("/tickets/{id}", s.getTicket)
			r.Put("/tickets/{id}", s.updateTicket)
			r.Put("/tickets/{id}/move", s.moveTicket)
			r.Delete("/tickets/{id}", s.deleteTicket)
			r.Post("/tickets/{id}/comments", s.addComment)
		})
	})

	return r
}

// NewHTTPServer returns an http.Server with sane timeouts around h
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
