package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/stembranch/internal/config"
)

var (
	ErrNotFound          = errors.New("storage: key not found")
	ErrInvalidKey        = errors.New("storage: invalid key")
	ErrChecksumMismatch  = errors.New("storage: checksum mismatch")
	ErrUnsupportedFormat = errors.New("storage: unsupported format")
	ErrInvalidMap        = errors.New("storage: invalid map data")
)

// Storage is a key/value blob store for saved maps
type Storage interface {
	Write(ctx context.Context, key string, value []byte) error
	// Read returns ErrNotFound when nothing is stored under key
	Read(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for a missing key
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	Statistics() Statistics
}

// Statistics counts successful operations
type Statistics struct {
	Reads   uint64
	Writes  uint64
	Deletes uint64
	Misses  uint64
}

// New builds the backend selected by cfg.Backend
func New(cfg config.Storage) (Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "file", "":
		return NewFileStorage(cfg.Dir)
	default:
		return nil, fmt.Errorf("%w: backend %q", ErrUnsupportedFormat, cfg.Backend)
	}
}
