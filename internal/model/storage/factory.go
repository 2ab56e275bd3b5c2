package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/logger"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemcache = "memcache"
)

// Backend is a key-value byte store holding one expense snapshot.
// Load reports found=false when nothing has been saved yet.
type Backend interface {
	Load(ctx context.Context) (snapshot []byte, found bool, err error)
	Save(ctx context.Context, snapshot []byte) error
	Close() error
}

type config interface {
	Backend() string
	SnapshotKey() string
	FilePath() string
	SQLitePath() string
}

type memcacheConfig interface {
	Hosts() []string
}

// Open creates the backend selected in config.
func Open(_ context.Context, cfg config, pg postgresConfig, mc memcacheConfig) (Backend, error) {
	logger.Info("opening snapshot storage", zap.String("backend", cfg.Backend()), zap.String("key", cfg.SnapshotKey()))

	var (
		backend Backend
		err     error
	)
	switch cfg.Backend() {
	case BackendMemory:
		backend = NewInMemStorage()
	case BackendFile:
		backend, err = asBackend(NewFileStorage(cfg.FilePath()))
	case BackendSQLite:
		backend, err = asBackend(NewSQLiteStorage(cfg.SQLitePath(), cfg.SnapshotKey()))
	case BackendPostgres:
		backend, err = asBackend(NewPostgresStorage(pg, cfg.SnapshotKey()))
	case BackendMemcache:
		backend, err = asBackend(cache.NewMemcache(mc, cfg.SnapshotKey()))
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s storage", cfg.Backend())
	}
	return backend, nil
}

// asBackend keeps a failed constructor from leaking a typed nil into the interface.
func asBackend[T Backend](b T, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres, BackendMemcache}
}
