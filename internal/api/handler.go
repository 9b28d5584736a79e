package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"filevault-backend/internal/logging"
	"filevault-backend/internal/models"
	"filevault-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// HealthCheck verifica um serviço de apoio
type HealthCheck func(ctx context.Context) error

// Handler gerencia as dependências para os handlers HTTP
type Handler struct {
	userService *service.UserService
	fileService *service.FileService
	validate    *validator.Validate
	log         logging.Logger
	checks      map[string]HealthCheck
}

// NewHandler cria uma nova instância do Handler
func NewHandler(userSvc *service.UserService, fileSvc *service.FileService, log logging.Logger) *Handler {
	return &Handler{
		userService: userSvc,
		fileService: fileSvc,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         log.With("component", "api"),
		checks:      make(map[string]HealthCheck),
	}
}

// AddHealthCheck registra uma verificação exibida em GET /status com o nome name
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// === Funções Auxiliares de Resposta ===

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(context.Background(), "failed to marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError converte os erros do serviço em status HTTP.
// Só mensagens de erros conhecidos chegam ao cliente.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrFolderHasNoContent):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		h.respondWithError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, service.ErrNotFound.Error())
	default:
		if !errors.Is(err, service.ErrInternal) {
			h.log.Error(r.Context(), "unexpected service error", "error", err, "path", r.URL.Path)
		}
		h.respondWithError(w, http.StatusInternalServerError, service.ErrInternal.Error())
	}
}

// decodeJSON lê o corpo da requisição em dst. Corpo vazio não altera dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// === Schemas de Resposta da API ===

type (
	// UserResponse é a visão pública de uma conta
	UserResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	// FileResponse é a visão pública de um nó. O pai raiz é "0".
	FileResponse struct {
		ID       string `json:"id"`
		UserID   string `json:"userId"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		IsPublic bool   `json:"isPublic"`
		ParentID string `json:"parentId"`
	}
)

// rootParentRef é como o pai raiz aparece no JSON
const rootParentRef = "0"

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email}
}

func newFileResponse(f *models.File) FileResponse {
	parent := rootParentRef
	if !f.IsRoot() {
		parent = f.ParentID.String()
	}
	return FileResponse{
		ID:       f.ID.String(),
		UserID:   f.OwnerID.String(),
		Name:     f.Name,
		Type:     string(f.Kind),
		IsPublic: f.IsPublic,
		ParentID: parent,
	}
}

// parseParentRef converte a referência de pai recebida em id.
// "", "0" e ausente significam a raiz.
func parseParentRef(ref string) (uuid.UUID, error) {
	if ref == "" || ref == rootParentRef {
		return models.RootParentID, nil
	}
	return uuid.Parse(ref)
}

// === Status ===

// handleStatus (GET /status)
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]bool, len(names))
	for _, name := range names {
		err := h.checks[name](ctx)
		if err != nil {
			h.log.Warn(r.Context(), "health check failed", "check", name, "error", err)
		}
		status[name] = err == nil
	}

	h.respondWithJSON(w, http.StatusOK, status)
}
