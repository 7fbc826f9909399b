package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vaultpass/passgen-go/internal/handler"
	"github.com/vaultpass/passgen-go/internal/middleware"
)

type routes struct {
	generator *handler.GeneratorHandler
	// auth is nil when accounts are disabled.
	auth      *handler.AuthHandler
	tokens    middleware.TokenValidator
	rateLimit func(http.Handler) http.Handler
}

// newRouter mounts the API. Every /api route shares one per-IP limiter.
// Without accounts the model route is anonymous; with accounts it requires
// a token.
func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.rateLimit)
		r.Post("/api/v1/generate", rt.generator.HandleGenerate)

		if rt.auth == nil {
			r.Post("/api/v1/generate/model", rt.generator.HandleGenerateModel)
			return
		}

		r.Post("/api/v1/auth/register", rt.auth.HandleRegister)
		r.Post("/api/v1/auth/login", rt.auth.HandleLogin)
	})

	if rt.auth != nil {
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimit)
			r.Use(middleware.JWTAuth(rt.tokens))
			r.Get("/api/v1/auth/me", rt.auth.HandleMe)
			r.Get("/api/v1/usage", rt.generator.HandleUsage)
			r.Post("/api/v1/generate/model", rt.generator.HandleGenerateModel)
		})
	}

	return r
}
