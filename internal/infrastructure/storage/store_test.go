package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]SlotStore {
	t.Helper()
	ctx := context.Background()

	file, err := NewFileStore(filepath.Join(t.TempDir(), "slots"))
	require.NoError(t, err)

	db, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "workspace.db"))
	require.NoError(t, err)

	compressed, err := NewCompressed(NewMemoryStore())
	require.NoError(t, err)

	stores := map[string]SlotStore{
		"memory":     NewMemoryStore(),
		"file":       file,
		"sqlite":     db,
		"compressed": compressed,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestSlotStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "workspace-tree")
			assert.ErrorIs(t, err, ErrSlotNotFound)

			require.NoError(t, store.Put(ctx, "workspace-tree", []byte(`{"version":1}`)))
			got, err := store.Get(ctx, "workspace-tree")
			require.NoError(t, err)
			assert.Equal(t, `{"version":1}`, string(got))

			require.NoError(t, store.Put(ctx, "workspace-tree", []byte(`{"version":2}`)))
			got, err = store.Get(ctx, "workspace-tree")
			require.NoError(t, err)
			assert.Equal(t, `{"version":2}`, string(got), "put overwrites")

			require.NoError(t, store.Delete(ctx, "workspace-tree"))
			_, err = store.Get(ctx, "workspace-tree")
			assert.ErrorIs(t, err, ErrSlotNotFound)
			assert.NoError(t, store.Delete(ctx, "workspace-tree"), "deleting a missing slot is fine")

			assert.ErrorIs(t, store.Put(ctx, "../escape", []byte("x")), ErrInvalidKey)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", data))
	data[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))

	require.NoError(t, s.Close())
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, "workspace-session", bytes.Repeat([]byte("x"), i*100)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "workspace-session.slot", entries[0].Name())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "workspace.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "workspace-tree", []byte("persisted")))
	before, err := s.UpdatedAt(ctx, "workspace-tree")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "workspace-tree")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))

	after, err := s.UpdatedAt(ctx, "workspace-tree")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestCompressed(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	c, err := NewCompressed(inner)
	require.NoError(t, err)
	defer c.Close()

	payload := []byte(strings.Repeat(`{"name":"a.ts","content":"console.log(1)"}`, 200))
	require.NoError(t, c.Put(ctx, "workspace-tree", payload))

	raw, err := inner.Get(ctx, "workspace-tree")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, zstdMagic))
	assert.Less(t, len(raw), len(payload))

	got, err := c.Get(ctx, "workspace-tree")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	t.Run("uncompressed legacy slot", func(t *testing.T) {
		require.NoError(t, inner.Put(ctx, "legacy", []byte(`{"nodes":[]}`)))
		got, err := c.Get(ctx, "legacy")
		require.NoError(t, err)
		assert.Equal(t, `{"nodes":[]}`, string(got))
	})

	t.Run("corrupt frame", func(t *testing.T) {
		require.NoError(t, inner.Put(ctx, "broken", append(append([]byte{}, zstdMagic...), 0xff, 0xff)))
		_, err := c.Get(ctx, "broken")
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr error
	}{
		{"default is memory", Options{}, &MemoryStore{}, nil},
		{"file", Options{Backend: BackendFile, Path: t.TempDir()}, &FileStore{}, nil},
		{"sqlite", Options{Backend: BackendSQLite, Path: t.TempDir()}, &SQLiteStore{}, nil},
		{"compressed", Options{Backend: BackendMemory, Compress: true}, &Compressed{}, nil},
		{"unknown", Options{Backend: "redis"}, nil, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"workspace-tree", "workspace-session", "a.b_c"} {
		assert.NoError(t, ValidateKey(key), key)
	}
	for _, key := range []string{"", "../x", "a/b", ".hidden", strings.Repeat("k", 200)} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}
