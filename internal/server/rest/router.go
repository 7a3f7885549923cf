package rest

import (
	"net/http"

	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and routes. Everything under /api passes the
// access gate.
func NewRouter(h *Handler, health *HealthHandler, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Metrics)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(AccessGate(h.Auth))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Get("/private", h.private)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.listTodos)
			r.Post("/add", h.createTodo)
			r.Get("/{id}", h.getTodo)
			r.Put("/{id}", h.updateTodo)
			r.Delete("/{id}", h.deleteTodo)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/add", h.createUser)
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.listRoles)
			r.Post("/add", h.createRole)
			r.Post("/assign", h.assignRole)
			r.Get("/user/{userId}", h.userRoles)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", h.listFiles)
			r.Post("/upload", h.upload)
			r.Get("/user", h.userFiles)
			r.Get("/user/{userId}", h.userFiles)
			r.Get("/{id}", h.getFile)
			r.Get("/{id}/download", h.downloadFile)
			r.Delete("/{id}", h.deleteFile)
		})
	})

	return r
}
