package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/stwalsh4118/luxeestate/internal/store"
)

const fileExt = ".json"

// FileKV stores each key as a file in a directory. Quota caps the total
// bytes across all keys; zero disables the cap.
type FileKV struct {
	fs    afero.Fs
	dir   string
	quota int64
	mu    sync.Mutex
}

// NewFileKV creates the directory if needed.
func NewFileKV(fs afero.Fs, dir string, quota int64) (*FileKV, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local store directory %s: %w", dir, err)
	}
	return &FileKV{fs: fs, dir: dir, quota: quota}, nil
}

func (k *FileKV) path(key string) string {
	return filepath.Join(k.dir, key+fileExt)
}

// Get reads the value at key.
func (k *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := afero.ReadFile(k.fs, k.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return data, nil
}

// Set writes value through a temp file and rename so a failed write never
// leaves a truncated value behind.
func (k *FileKV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.quota > 0 {
		used, err := k.usageExcluding(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > k.quota {
			return fmt.Errorf("%w: writing %s needs %d bytes, %d of %d in use",
				store.ErrQuotaExceeded, key, len(value), used, k.quota)
		}
	}

	tmp := k.path(key) + ".tmp"
	if err := afero.WriteFile(k.fs, tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := k.fs.Rename(tmp, k.path(key)); err != nil {
		_ = k.fs.Remove(tmp)
		return fmt.Errorf("failed to commit key %s: %w", key, err)
	}
	return nil
}

// usageExcluding sums the size of every stored key except key itself,
// since its old value is about to be replaced.
func (k *FileKV) usageExcluding(key string) (int64, error) {
	entries, err := afero.ReadDir(k.fs, k.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to measure local store usage: %w", err)
	}

	var used int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || name == key+fileExt {
			continue
		}
		used += entry.Size()
	}
	return used, nil
}

// Close is a no-op; files are written synchronously.
func (k *FileKV) Close() error {
	return nil
}
