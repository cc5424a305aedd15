package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/spf13/afero"
)

var _ port.BasketStore = (*FileStore)(nil)

// A FileStore keeps the basket in <dir>/<key>.json.
//
// Saves write a temporary file and rename it over the previous one.
type FileStore struct {
	fs  afero.Fs
	dir string
	key string
}

func NewFileStore(fsys afero.Fs, dir, key string) FileStore {
	if dir == "" {
		dir = "."
	}
	return FileStore{fs: fsys, dir: dir, key: keyOrDefault(key)}
}

func (s FileStore) Path() string {
	return filepath.Join(s.dir, s.key+".json")
}

func (s FileStore) Load(ctx context.Context) domain.Basket {
	const op = "FileStore.Load"
	log := slog.With("op", op)

	data, err := afero.ReadFile(s.fs, s.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("failed to read basket file", "err", err)
		}
		return domain.Basket{}
	}
	return basketOrEmpty(op, data)
}

func (s FileStore) Save(ctx context.Context, b domain.Basket) error {
	const op = "FileStore.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := encodeBasket(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, s.key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		s.discard(tmp, tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		s.discard(tmp, tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fs.Rename(tmpName, s.Path()); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s FileStore) discard(f afero.File, name string) {
	_ = f.Close()
	_ = s.fs.Remove(name)
}
