package repository

import (
	"context"
	"errors"

	"filevault-backend/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando o registro não existe
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists é retornado quando uma restrição de unicidade seria violada
	ErrAlreadyExists = errors.New("already exists")
)

// UserStore define as operações de usuário do repositório
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FileStore define as operações de nós de arquivo do repositório
type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	GetFileByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	// ListFiles retorna os nós do dono sob o pai, na ordem de criação.
	ListFiles(ctx context.Context, ownerID, parentID uuid.UUID, offset, limit int) ([]*models.File, error)
	SetFilePublic(ctx context.Context, id uuid.UUID, isPublic bool) (*models.File, error)
}

// Store agrega todas as interfaces de armazenamento.
// Facilita a injeção de dependência.
type Store interface {
	UserStore
	FileStore
	Ping(ctx context.Context) error
}
