package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs as files directly under root.
// All operations are confined to root.
type LocalStore struct {
	root string
}

// NewLocalStore resolves root to an absolute path and creates it if missing
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrInvalidConfig)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	return &LocalStore{root: abs}, nil
}

// Root returns the absolute blob directory
func (s *LocalStore) Root() string {
	return s.root
}

// Put writes data to a new file. An existing locator is never overwritten.
func (s *LocalStore) Put(ctx context.Context, locator string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrBlobExists, locator)
		}
		return fmt.Errorf("failed to create blob: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path) // no partial blobs
		return fmt.Errorf("failed to write blob: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close blob: %w", err)
	}
	return nil
}

// Open opens the blob for reading
func (s *LocalStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, locator)
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// resolve maps a locator to a path inside root, rejecting traversal
func (s *LocalStore) resolve(locator string) (string, error) {
	if locator == "" || strings.ContainsAny(locator, `/\`) || locator == "." || locator == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}

	path := filepath.Join(s.root, locator)
	if filepath.Dir(path) != s.root {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}
	return path, nil
}
