package api

import (
	"errors"
	"net/http"

	"filevault-backend/internal/service"

	"github.com/go-playground/validator/v10"
)

// firstInvalidField retorna o nome do primeiro campo inválido,
// na ordem de declaração da struct.
func firstInvalidField(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	return verrs[0].StructField(), true
}

// === Handlers de Usuário ===

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleRegisterUser (POST /users)
func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		field, _ := firstInvalidField(err)
		switch field {
		case "Email":
			h.respondWithServiceError(w, r, service.ErrMissingEmail)
		default:
			h.respondWithServiceError(w, r, service.ErrMissingPassword)
		}
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, newUserResponse(user))
}

// handleGetMe (GET /users/me)
func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newUserResponse(user))
}

// === Handlers de Sessão ===

// handleConnect (GET /connect) troca credenciais Basic por um token
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	// 1. Ler "Authorization: Basic base64(email:password)"
	email, password, ok := r.BasicAuth()
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	// 2. Verificar e abrir a sessão
	token, err := h.userService.Login(r.Context(), email, password)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleDisconnect (GET /disconnect)
func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Logout(r.Context(), r.Header.Get(TokenHeader)); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
