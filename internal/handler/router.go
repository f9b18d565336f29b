package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/middleware"
)

// RouterConfig carries the wired dependencies for NewRouter.
type RouterConfig struct {
	Auth    *AuthHandler
	Todos   *TodoHandler
	Respond *Responder
	Tokens  *crypto.TokenManager
	Users   middleware.UserLoader

	// AuthRPS/AuthBurst shape the per-IP rate limit on the auth endpoints.
	// Zero disables limiting (tests hammer signup from one address).
	AuthRPS   float64
	AuthBurst int
}

// NewRouter assembles the full route table. It is shared by main and the
// integration tests so both run the same middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cfg.Respond.Recoverer)

	r.Get("/health", cfg.Respond.HandleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		if cfg.AuthRPS > 0 {
			r.Use(middleware.RateLimit(cfg.AuthRPS, cfg.AuthBurst))
		}
		r.Post("/signup", cfg.Auth.HandleSignup)
		r.Post("/login", cfg.Auth.HandleLogin)
		r.Post("/forgot-password", cfg.Auth.HandleForgotPassword)
		r.Post("/reset-password", cfg.Auth.HandleResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Tokens, cfg.Users))
		r.Get("/api/todos", cfg.Todos.HandleList)
		r.Post("/api/todos", cfg.Todos.HandleCreate)
		r.Put("/api/todos/{id}", cfg.Todos.HandleUpdate)
		r.Delete("/api/todos/{id}", cfg.Todos.HandleDelete)
		r.Patch("/api/todos/{id}/toggle", cfg.Todos.HandleToggle)
	})

	r.NotFound(cfg.Respond.NotFound)

	return r
}
