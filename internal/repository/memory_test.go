package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"filevault-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(owner, parent uuid.UUID, name string) *models.File {
	return &models.File{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Kind:      models.KindFolder,
		ParentID:  parent,
		CreatedAt: time.Now(),
	}
}

func TestInMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	u := &models.User{ID: uuid.New(), Email: "bob@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, u))

	err := s.CreateUser(ctx, &models.User{ID: uuid.New(), Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Email lookups are case-sensitive
	_, err = s.GetUserByEmail(ctx, "BOB@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	_, err = s.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_FileCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	f := newFile(uuid.New(), models.RootParentID, "docs")
	require.NoError(t, s.CreateFile(ctx, f))

	f.Name = "mutated"
	got, err := s.GetFileByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)

	got.IsPublic = true
	again, err := s.GetFileByID(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, again.IsPublic)

	assert.ErrorIs(t, s.CreateFile(ctx, &models.File{ID: f.ID}), ErrAlreadyExists)
}

func TestInMemoryStore_ListFilesPagination(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	owner, other := uuid.New(), uuid.New()
	folder := uuid.New()

	var want []uuid.UUID
	for i := 0; i < 45; i++ {
		f := newFile(owner, models.RootParentID, fmt.Sprintf("f%d", i))
		require.NoError(t, s.CreateFile(ctx, f))
		want = append(want, f.ID)

		// noise that must be filtered out
		require.NoError(t, s.CreateFile(ctx, newFile(other, models.RootParentID, "x")))
		require.NoError(t, s.CreateFile(ctx, newFile(owner, folder, "y")))
	}

	var got []uuid.UUID
	for page := 0; ; page++ {
		files, err := s.ListFiles(ctx, owner, models.RootParentID, page*20, 20)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(files), 20)
		if len(files) == 0 {
			break
		}
		for _, f := range files {
			got = append(got, f.ID)
		}
	}
	assert.Equal(t, want, got)

	empty, err := s.ListFiles(ctx, uuid.New(), models.RootParentID, 0, 20)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestInMemoryStore_SetFilePublic(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	f := newFile(uuid.New(), models.RootParentID, "a.txt")
	require.NoError(t, s.CreateFile(ctx, f))

	updated, err := s.SetFilePublic(ctx, f.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	got, err := s.GetFileByID(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	_, err = s.SetFilePublic(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}
