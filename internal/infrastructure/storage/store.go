// Package storage provides the durable key-value slots workspace state is
// persisted into.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

var (
	ErrSlotNotFound   = errors.New("slot not found")
	ErrInvalidKey     = errors.New("invalid slot key")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrClosed         = errors.New("store closed")
)

// SlotStore is a durable key-value store holding opaque blobs
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names a SlotStore implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Options selects and configures a backend
type Options struct {
	Backend  Backend
	Path     string // directory for the file and sqlite backends
	Compress bool
}

// Open builds the store described by opts
func Open(ctx context.Context, opts Options) (SlotStore, error) {
	var (
		s   SlotStore
		err error
	)
	switch opts.Backend {
	case BackendMemory, "":
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(opts.Path)
	case BackendSQLite:
		s, err = NewSQLiteStore(ctx, filepath.Join(opts.Path, "workspace.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if !opts.Compress {
		return s, nil
	}
	c, err := NewCompressed(s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return c, nil
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey rejects keys that are not safe to use as file names
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
