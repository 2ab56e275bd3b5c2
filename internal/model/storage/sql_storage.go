package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	// postgres driver
	_ "github.com/lib/pq"
	// sqlite driver
	_ "modernc.org/sqlite"
)

const (
	dsnTemplate   = "user=%s password=%s host=%s port=%d dbname=%s sslmode=%s"
	snapshotTable = "expense_snapshots"
)

type postgresConfig interface {
	Host() string
	Port() int
	Username() string
	Password() string
	Database() string
	SSLMode() string
}

// SQLStorage keeps each snapshot as one row of expense_snapshots, keyed by name.
// Every save replaces the whole payload in a single upsert.
type SQLStorage struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	key     string
}

func newSQLStorage(db *sql.DB, placeholder sq.PlaceholderFormat, key string) *SQLStorage {
	return &SQLStorage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		key:     key,
	}
}

func PostgresDSN(config postgresConfig) string {
	return fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Port(),
		config.Database(),
		config.SSLMode())
}

func NewPostgresStorage(config postgresConfig, key string) (*SQLStorage, error) {
	dsn := PostgresDSN(config)
	if err := runMigrations(dialectPostgres, dsn); err != nil {
		return nil, errors.Wrap(err, "migrate postgres")
	}

	db, err := sql.Open(dialectPostgres, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return newSQLStorage(db, sq.Dollar, key), nil
}

func NewSQLiteStorage(path, key string) (*SQLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, errors.Wrap(err, "create db directory")
	}
	if err := runMigrations(dialectSQLite, path); err != nil {
		return nil, errors.Wrap(err, "migrate sqlite")
	}

	db, err := sql.Open(dialectSQLite, path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}
	return newSQLStorage(db, sq.Question, key), nil
}

func (s *SQLStorage) Load(ctx context.Context) ([]byte, bool, error) {
	query := s.builder.Select("payload").
		From(snapshotTable).
		Where(sq.Eq{"snapshot_key": s.key})

	var payload []byte
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "load snapshot")
	}
	return payload, true, nil
}

func (s *SQLStorage) Save(ctx context.Context, snapshot []byte) error {
	query := s.builder.Insert(snapshotTable).
		Columns("snapshot_key", "payload", "updated_at").
		Values(s.key, snapshot, time.Now().UTC()).
		Suffix("ON CONFLICT (snapshot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save snapshot")
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
