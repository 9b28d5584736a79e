package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"filevault-backend/internal/models"
	"filevault-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createFileRequest struct {
	Name     string          `json:"name" validate:"required"`
	Type     string          `json:"type" validate:"required,oneof=folder file image"`
	ParentID json.RawMessage `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data" validate:"required_unless=Type folder"`
}

// missingFieldErrors associa cada campo da requisição ao erro reportado quando falha
var missingFieldErrors = map[string]error{
	"Name": service.ErrMissingName,
	"Type": service.ErrMissingType,
	"Data": service.ErrMissingData,
}

// parentRefFromJSON aceita o pai como string JSON, o número 0 ou null
func parentRefFromJSON(raw json.RawMessage) (uuid.UUID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.RootParentID, nil
	}

	var ref string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &ref); err != nil {
			return uuid.Nil, err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return uuid.Nil, err
		}
		ref = n.String()
	}
	return parseParentRef(ref)
}

// fileIDParam lê o parâmetro {id} da URL. Ids malformados são tratados
// como recursos inexistentes.
func fileIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// === Handlers de Arquivo ===

// handleCreateFile (POST /files)
func (h *Handler) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	// 1. Obter o dono do contexto (injetado pelo middleware)
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	// 2. Decodificar e validar o request
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		field, _ := firstInvalidField(err)
		if missing, ok := missingFieldErrors[field]; ok {
			h.respondWithServiceError(w, r, missing)
			return
		}
		h.respondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	parentID, err := parentRefFromJSON(req.ParentID)
	if err != nil {
		h.respondWithServiceError(w, r, service.ErrParentNotFound)
		return
	}

	var data []byte
	if models.FileKind(req.Type).HasContent() {
		data, err = base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid data")
			return
		}
	}

	// 3. Criar o nó
	file, err := h.fileService.Create(r.Context(), user.ID, service.CreateFileRequest{
		Name:     req.Name,
		Kind:     models.FileKind(req.Type),
		ParentID: parentID,
		IsPublic: req.IsPublic,
		Data:     data,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, newFileResponse(file))
}

// handleGetFile (GET /files/{id})
func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	fileID, ok := fileIDParam(r)
	if !ok {
		h.respondWithServiceError(w, r, service.ErrNotFound)
		return
	}

	file, err := h.fileService.Get(r.Context(), fileID, user.ID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newFileResponse(file))
}

// handleListFiles (GET /files?parentId=&page=)
func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	// 1. Um pai ilegível não tem filhos
	parentID, err := parseParentRef(r.URL.Query().Get("parentId"))
	if err != nil {
		h.respondWithJSON(w, http.StatusOK, []FileResponse{})
		return
	}

	// 2. Página inválida vira a primeira página
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 0
	}

	files, err := h.fileService.List(r.Context(), user.ID, parentID, page)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	response := make([]FileResponse, 0, len(files))
	for _, f := range files {
		response = append(response, newFileResponse(f))
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// handlePublish (PUT /files/{id}/publish)
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// handleUnpublish (PUT /files/{id}/unpublish)
func (h *Handler) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondWithServiceError(w, r, service.ErrUnauthorized)
		return
	}

	fileID, ok := fileIDParam(r)
	if !ok {
		h.respondWithServiceError(w, r, service.ErrNotFound)
		return
	}

	file, err := h.fileService.SetVisibility(r.Context(), fileID, user.ID, isPublic)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newFileResponse(file))
}

// handleGetFileData (GET /files/{id}/data?size=) envia o conteúdo.
// Chamadas anônimas podem ler arquivos públicos.
func (h *Handler) handleGetFileData(w http.ResponseWriter, r *http.Request) {
	fileID, ok := fileIDParam(r)
	if !ok {
		h.respondWithServiceError(w, r, service.ErrNotFound)
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		// sizes ilegíveis são rejeitados pelo serviço depois da checagem de acesso
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		size = n
	}

	content, err := h.fileService.ReadContent(r.Context(), fileID, requesterID(r.Context()), size)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	defer content.Body.Close()

	w.Header().Set("Content-Type", content.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content.Body); err != nil {
		h.log.Warn(r.Context(), "failed to stream content", "file_id", fileID, "error", err)
	}
}
