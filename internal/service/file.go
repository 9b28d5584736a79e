package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"time"

	"filevault-backend/internal/jobs"
	"filevault-backend/internal/logging"
	"filevault-backend/internal/models"
	"filevault-backend/internal/repository"
	"filevault-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	// PageSize é o número de nós por página do List
	PageSize = 20

	defaultContentType = "application/octet-stream"
)

// ThumbnailSizes são as larguras geradas pelo worker de thumbnails
var ThumbnailSizes = []int{500, 250, 100}

// FileService mantém a hierarquia de arquivos e aplica a regra de acesso
// em toda leitura e alteração.
type FileService struct {
	store      repository.FileStore
	blobs      storage.BlobStore
	dispatcher jobs.Dispatcher
	log        logging.Logger
}

// NewFileService cria um novo serviço de arquivos
func NewFileService(store repository.FileStore, blobs storage.BlobStore, dispatcher jobs.Dispatcher, log logging.Logger) *FileService {
	return &FileService{
		store:      store,
		blobs:      blobs,
		dispatcher: dispatcher,
		log:        log.With("component", "files"),
	}
}

// CreateFileRequest contém os parâmetros de um novo nó.
// Data é ignorado para pastas e obrigatório nos demais casos.
type CreateFileRequest struct {
	Name     string
	Kind     models.FileKind
	ParentID uuid.UUID
	IsPublic bool
	Data     []byte
}

// Content é um blob aberto, pronto para ser enviado ao cliente.
// Quem chama deve fechar o Body.
type Content struct {
	File        *models.File
	ContentType string
	Body        io.ReadCloser
}

// Create valida e persiste um novo nó
func (s *FileService) Create(ctx context.Context, ownerID uuid.UUID, req CreateFileRequest) (*models.File, error) {
	// 1. Validar a entrada numa ordem fixa
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if !req.Kind.Valid() {
		return nil, ErrMissingType
	}
	if req.Kind.HasContent() && req.Data == nil {
		return nil, ErrMissingData
	}

	// 2. Verificar o pai
	if req.ParentID != models.RootParentID {
		parent, err := s.store.GetFileByID(ctx, req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			s.log.Error(ctx, "failed to load parent", "parent_id", req.ParentID, "error", err)
			return nil, ErrInternal
		}
		// pastas que o chamador não vê são tratadas como inexistentes
		if !parent.VisibleTo(ownerID) {
			return nil, ErrParentNotFound
		}
		if parent.Kind != models.KindFolder {
			return nil, ErrParentIsNotFolder
		}
	}

	file := &models.File{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Kind:      req.Kind,
		ParentID:  req.ParentID,
		IsPublic:  req.IsPublic,
		CreatedAt: time.Now().UTC(),
	}

	// 3. Gravar o conteúdo antes, para o metadado nunca apontar para o vazio
	if req.Kind.HasContent() {
		locator := storage.NewLocator()
		if err := s.blobs.Put(ctx, locator, req.Data); err != nil {
			s.log.Error(ctx, "failed to store content", "locator", locator, "error", err)
			return nil, ErrInternal
		}
		file.Locator = locator
	}

	// 4. Persistir o metadado
	if err := s.store.CreateFile(ctx, file); err != nil {
		s.log.Error(ctx, "failed to save file", "file_id", file.ID, "locator", file.Locator, "error", err)
		return nil, ErrInternal
	}

	// 5. Pedir os thumbnails; o resultado não depende disso
	if file.Kind == models.KindImage {
		s.enqueueThumbnail(ctx, file)
	}

	s.log.Info(ctx, "file created", "file_id", file.ID, "kind", file.Kind, "owner_id", ownerID)
	return file, nil
}

func (s *FileService) enqueueThumbnail(ctx context.Context, file *models.File) {
	// o enqueue não depende da vida da requisição
	ctx = context.WithoutCancel(ctx)
	if err := s.dispatcher.EnqueueThumbnail(ctx, file.ID, file.OwnerID); err != nil {
		s.log.Warn(ctx, "thumbnail job not enqueued", "file_id", file.ID, "owner_id", file.OwnerID, "error", err)
	}
}

// Get retorna o nó se requesterID for o dono ou se ele for público
func (s *FileService) Get(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	file, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	return file, nil
}

// List retorna uma página dos nós do dono logo abaixo de parentID, na
// ordem de criação. O cliente pagina até receber uma lista vazia.
func (s *FileService) List(ctx context.Context, ownerID, parentID uuid.UUID, page int) ([]*models.File, error) {
	if page < 0 {
		page = 0
	}

	files, err := s.store.ListFiles(ctx, ownerID, parentID, page*PageSize, PageSize)
	if err != nil {
		s.log.Error(ctx, "failed to list files", "owner_id", ownerID, "parent_id", parentID, "error", err)
		return nil, ErrInternal
	}
	return files, nil
}

// SetVisibility publica ou despublica um nó. Só o dono pode;
// os demais recebem ErrNotFound.
func (s *FileService) SetVisibility(ctx context.Context, fileID, requesterID uuid.UUID, isPublic bool) (*models.File, error) {
	file, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.OwnedBy(requesterID) {
		return nil, ErrNotFound
	}

	updated, err := s.store.SetFilePublic(ctx, fileID, isPublic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ctx, "failed to update visibility", "file_id", fileID, "error", err)
		return nil, ErrInternal
	}
	return updated, nil
}

// ReadContent abre o conteúdo de um arquivo ou imagem. size escolhe uma
// variante de thumbnail; zero é o original.
func (s *FileService) ReadContent(ctx context.Context, fileID, requesterID uuid.UUID, size int) (*Content, error) {
	file, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if file.Kind == models.KindFolder {
		return nil, ErrFolderHasNoContent
	}
	// size só é avaliado depois que o chamador pode ver o arquivo
	if !file.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	if size != 0 && !slices.Contains(ThumbnailSizes, size) {
		return nil, ErrInvalidSize
	}

	locator := file.Locator
	if size != 0 {
		locator = storage.VariantLocator(locator, size)
	}

	body, err := s.blobs.Open(ctx, locator)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ctx, "failed to open content", "file_id", fileID, "locator", locator, "error", err)
		return nil, ErrInternal
	}

	return &Content{
		File:        file,
		ContentType: ContentTypeFor(file.Name),
		Body:        body,
	}, nil
}

func (s *FileService) load(ctx context.Context, fileID uuid.UUID) (*models.File, error) {
	file, err := s.store.GetFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ctx, "failed to load file", "file_id", fileID, "error", err)
		return nil, ErrInternal
	}
	return file, nil
}

// ContentTypeFor deduz o tipo MIME pela extensão de name
func ContentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}
