package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const dirPerm = 0o755

// FileStorage keeps the snapshot in a single local file.
// Saves go to a temp file in the same directory which then replaces the target,
// so readers never observe a half-written snapshot.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, errors.Wrap(err, "create snapshot directory")
	}
	return &FileStorage{path: path}, nil
}

func (s *FileStorage) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read snapshot file")
	}
	return data, true, nil
}

func (s *FileStorage) Save(_ context.Context, snapshot []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Error("failed to remove temp snapshot", zap.String("path", tmp.Name()), zap.Error(rmErr))
		}
	}()

	if _, err = tmp.Write(snapshot); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp snapshot")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync temp snapshot")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp snapshot")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace snapshot file")
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
