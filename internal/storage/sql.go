package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spesetracker/internal/kv"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect holds the driver name and the statements that differ per database.
type Dialect struct {
	Name       string
	DriverName string
	readQuery  string
	writeQuery string
}

var (
	DialectSQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		readQuery:  `SELECT value FROM kv_blobs WHERE blob_key = ?`,
		writeQuery: `INSERT INTO kv_blobs (blob_key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(blob_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
	DialectPostgres = Dialect{
		Name:       "postgres",
		DriverName: "postgres",
		readQuery:  `SELECT value FROM kv_blobs WHERE blob_key = $1`,
		writeQuery: `INSERT INTO kv_blobs (blob_key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (blob_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	}
)

// SQLStore keeps one row per key in the kv_blobs table. Each write is a
// single upsert statement, so a value is replaced atomically.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLiteStore opens (and creates) the database file and migrates it.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return openSQLStore(DialectSQLite, dbPath)
}

// NewPostgresStore connects to url and migrates the schema.
func NewPostgresStore(url string) (*SQLStore, error) {
	return openSQLStore(DialectPostgres, url)
}

func openSQLStore(d Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.Name, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Read implements kv.Reader
func (s *SQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.readQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return value, nil
}

// Write implements kv.Writer
func (s *SQLStore) Write(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.writeQuery, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Blob saved",
		"dialect", s.dialect.Name,
		"key", key,
		"bytes", len(value))

	return nil
}
