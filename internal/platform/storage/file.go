package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// FileStore keeps one <collection>.json file per collection under Dir.
type FileStore struct {
	Dir   string
	loads singleflight.Group
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.Dir, c.FileName())
}

func (s *FileStore) Load(ctx context.Context, c Collection) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	v, err, _ := s.loads.Do(string(c), func() (any, error) {
		raw, err := os.ReadFile(s.path(c))
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{Collection: c, State: Empty}, nil
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("read %s: %w", c, err)
		}
		return snapshotFrom(c, raw)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Save writes to a temporary file in Dir and renames it over the target,
// so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, c Collection, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", c, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c, err)
	}
	if err := os.Rename(tmpName, s.path(c)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", c, err)
	}
	return nil
}
