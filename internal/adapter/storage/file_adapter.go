package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glam-abaya/cartstore/internal/port"
)

// FileAdapter keeps each slot as a JSON file under basePath.
type FileAdapter struct {
	basePath string
}

func NewFileAdapter(basePath string) (*FileAdapter, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &FileAdapter{basePath: basePath}, nil
}

func (f *FileAdapter) Slot(key string) port.CartSlot {
	return &fileSlot{path: filepath.Join(f.basePath, fileName(key))}
}

func (f *FileAdapter) Close() error { return nil }

// fileName encodes key as unpadded URL-safe base64, so distinct keys never
// share a file and no key can escape basePath.
func fileName(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key)) + ".json"
}

type fileSlot struct {
	path string
}

func (s *fileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes through a temp file so a crash never leaves a torn slot.
func (s *fileSlot) Save(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}
