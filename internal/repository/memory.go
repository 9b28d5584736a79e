package repository

import (
	"context"
	"fmt"
	"sync"

	"filevault-backend/internal/models"

	"github.com/google/uuid"
)

// InMemoryStore é uma implementação em memória do Store.
// Os arquivos ficam numa arena só de inserção, indexada por id; a ordem da
// arena é a ordem de criação.
type InMemoryStore struct {
	mu           sync.RWMutex
	usersByID    map[uuid.UUID]*models.User
	usersByEmail map[string]*models.User
	files        []*models.File
	filesByID    map[uuid.UUID]int
}

// NewInMemoryStore cria um novo store em memória
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		usersByID:    make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]*models.User),
		filesByID:    make(map[uuid.UUID]int),
	}
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return nil
}

// --- UserStore ---

func (s *InMemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return fmt.Errorf("user '%s': %w", user.Email, ErrAlreadyExists)
	}

	u := *user
	s.usersByID[u.ID] = &u
	s.usersByEmail[u.Email] = &u
	return nil
}

func (s *InMemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[email]
	if !exists {
		return nil, fmt.Errorf("user '%s': %w", email, ErrNotFound)
	}
	u := *user
	return &u, nil
}

func (s *InMemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByID[id]
	if !exists {
		return nil, fmt.Errorf("user with ID '%s': %w", id, ErrNotFound)
	}
	u := *user
	return &u, nil
}

// --- FileStore ---

func (s *InMemoryStore) CreateFile(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.filesByID[file.ID]; exists {
		return fmt.Errorf("file '%s': %w", file.ID, ErrAlreadyExists)
	}

	f := *file
	s.filesByID[f.ID] = len(s.files)
	s.files = append(s.files, &f)
	return nil
}

func (s *InMemoryStore) GetFileByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.filesByID[id]
	if !exists {
		return nil, fmt.Errorf("file '%s': %w", id, ErrNotFound)
	}
	f := *s.files[idx]
	return &f, nil
}

func (s *InMemoryStore) ListFiles(ctx context.Context, ownerID, parentID uuid.UUID, offset, limit int) ([]*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Slice vazio em vez de nil mantém o JSON consistente
	files := []*models.File{}
	skipped := 0
	for _, f := range s.files {
		if len(files) >= limit {
			break
		}
		if f.OwnerID != ownerID || f.ParentID != parentID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		copied := *f
		files = append(files, &copied)
	}
	return files, nil
}

func (s *InMemoryStore) SetFilePublic(ctx context.Context, id uuid.UUID, isPublic bool) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.filesByID[id]
	if !exists {
		return nil, fmt.Errorf("file '%s': %w", id, ErrNotFound)
	}
	s.files[idx].IsPublic = isPublic
	f := *s.files[idx]
	return &f, nil
}
