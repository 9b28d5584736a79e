package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes configura e retorna o roteador Chi
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middlewares globais
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", TokenHeader},
		MaxAge:         300,
	}))

	// Endpoints públicos (sem autenticação)
	r.Get("/status", h.handleStatus)
	r.Get("/connect", h.handleConnect)
	r.Get("/disconnect", h.handleDisconnect)
	r.Post("/users", h.handleRegisterUser)

	r.With(h.OptionalAuthMiddleware).Get("/files/{id}/data", h.handleGetFileData)

	// Endpoints protegidos (requerem autenticação)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/users/me", h.handleGetMe)

		r.Post("/files", h.handleCreateFile)
		r.Get("/files", h.handleListFiles)
		r.Get("/files/{id}", h.handleGetFile)
		r.Put("/files/{id}/publish", h.handlePublish)
		r.Put("/files/{id}/unpublish", h.handleUnpublish)
	})

	return r
}
