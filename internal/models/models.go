package models

import (
	"time"

	"github.com/google/uuid"
)

// RootParentID é o pai dos nós que não estão dentro de nenhuma pasta.
var RootParentID = uuid.Nil

// User representa uma conta no sistema
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Nunca exposto no JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// FileKind é o tipo de um nó na hierarquia de arquivos
type FileKind string

const (
	KindFolder FileKind = "folder"
	KindFile   FileKind = "file"
	KindImage  FileKind = "image"
)

// Valid informa se k é um dos tipos suportados.
func (k FileKind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	default:
		return false
	}
}

// HasContent informa se nós deste tipo têm conteúdo (locator).
func (k FileKind) HasContent() bool {
	return k == KindFile || k == KindImage
}

// File representa um nó (pasta, arquivo ou imagem) na hierarquia de um usuário.
// Locator é vazio para pastas.
type File struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Kind      FileKind  `json:"type"`
	ParentID  uuid.UUID `json:"parentId"`
	IsPublic  bool      `json:"isPublic"`
	Locator   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsRoot informa se o nó não tem pasta pai.
func (f *File) IsRoot() bool {
	return f.ParentID == RootParentID
}

// VisibleTo implementa a regra de leitura: o dono sempre vê seus nós,
// os demais só veem os públicos.
func (f *File) VisibleTo(requesterID uuid.UUID) bool {
	if f == nil {
		return false
	}
	return f.IsPublic || (requesterID != uuid.Nil && f.OwnerID == requesterID)
}

// OwnedBy informa se requesterID pode alterar o nó.
func (f *File) OwnedBy(requesterID uuid.UUID) bool {
	return f != nil && requesterID != uuid.Nil && f.OwnerID == requesterID
}

// ThumbnailJob é o payload entregue ao worker de thumbnails
type ThumbnailJob struct {
	FileID  uuid.UUID `json:"fileId"`
	OwnerID uuid.UUID `json:"ownerId"`
}
