package api

import (
	"context"
	"net/http"
	"time"

	"filevault-backend/internal/models"
	"filevault-backend/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// TokenHeader carrega o token de sessão nas requisições autenticadas
const TokenHeader = "X-Token"

// contextKey é um tipo privado para evitar colisões de chaves no contexto
type contextKey string

const userContextKey = contextKey("user")

func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// requesterID é o id do usuário autenticado, ou uuid.Nil se anônimo
func requesterID(ctx context.Context) uuid.UUID {
	if user, ok := userFromContext(ctx); ok {
		return user.ID
	}
	return uuid.Nil
}

// AuthMiddleware rejeita requisições sem um token de sessão válido
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Obter o header do token
		token := r.Header.Get(TokenHeader)
		if token == "" {
			h.respondWithServiceError(w, r, service.ErrUnauthorized)
			return
		}

		// 2. Resolver o usuário do token
		user, err := h.userService.Authenticate(r.Context(), token)
		if err != nil {
			h.respondWithServiceError(w, r, err)
			return
		}

		// 3. Armazenar o usuário no contexto da requisição
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware injeta o usuário quando o token resolve e
// deixa a requisição seguir anônima caso contrário.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TokenHeader)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.userService.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger registra uma linha por requisição no logger do serviço
func (h *Handler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			h.log.Info(r.Context(), "request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
