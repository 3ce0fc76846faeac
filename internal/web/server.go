// Package web exposes the account and session services over a JSON REST
// API.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saaskit/saaskit/internal/account"
	"github.com/saaskit/saaskit/internal/session"
)

// Server handles the HTTP requests of the app.
type Server struct {
	logger   *slog.Logger
	accounts *account.Service
	sessions *session.Service
	router   chi.Router
}

func NewServer(logger *slog.Logger, accounts *account.Service, sessions *session.Service) *Server {
	s := &Server{
		logger:   logger,
		accounts: accounts,
		sessions: sessions,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/users", s.createUser)
		r.Post("/users/register", s.register)

		r.Post("/auth/login", s.login)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Post("/auth/reset-password", s.resetPassword)

		// Routes below require a session token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/users/{id}", s.getUser)
			r.Patch("/users/{id}", s.updateUser)
		})
	})

	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
