// Package storage persists raw file content at opaque locators,
// independently of the metadata store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound   = errors.New("blob not found")
	ErrInvalidLocator = errors.New("invalid locator")
	ErrBlobExists     = errors.New("blob already exists")
	ErrInvalidConfig  = errors.New("invalid storage configuration")
)

// BlobStore reads and writes content by locator.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	Put(ctx context.Context, locator string, data []byte) error
	// Open returns the content at locator; the caller closes it.
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// NewLocator returns a fresh locator. Every upload gets its own, so
// concurrent uploads never share a storage location.
func NewLocator() string {
	return uuid.New().String()
}

// VariantLocator is where the thumbnail worker writes the size variant of
// the blob at locator.
func VariantLocator(locator string, size int) string {
	return fmt.Sprintf("%s_%d", locator, size)
}
