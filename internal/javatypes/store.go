package javatypes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store caches a built Index in a SQLite database so later runs can skip
// parsing when no source changed.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the cache at path. ":memory:" keeps
// the cache in memory.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open index store: empty path")
	}

	dsn := path
	if path != ":memory:" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = absPath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS java_types (
			name TEXT PRIMARY KEY,
			file TEXT NOT NULL DEFAULT '',
			payload_json TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS java_sources (
			path TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			mod_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_java_types_file ON java_types(file)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate index store: %w", err)
		}
	}
	return nil
}

// Save replaces the cached index with the source types of x.
func (s *Store) Save(ctx context.Context, x *Index) error {
	if !x.Built() {
		return ErrIndexNotBuilt
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM java_types`, `DELETE FROM java_sources`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear index store: %w", err)
		}
	}
	for _, t := range x.Types(false) {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO java_types(name, file, payload_json) VALUES(?,?,?)`,
			t.Name, t.File, string(payload),
		); err != nil {
			return fmt.Errorf("insert %s: %w", t.Name, err)
		}
	}
	for _, src := range x.Sources() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO java_sources(path, size, mod_time) VALUES(?,?,?)`,
			src.Path, src.Size, src.ModTime.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert source %s: %w", src.Path, err)
		}
	}
	return tx.Commit()
}

// Load rebuilds an index from the cache. It returns ErrIndexNotBuilt when the
// cache is empty.
func (s *Store) Load(ctx context.Context, logger *slog.Logger) (*Index, error) {
	var types []*TypeInfo
	rows, err := s.db.QueryContext(ctx, `SELECT payload_json FROM java_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		t := &TypeInfo{}
		if err := json.Unmarshal([]byte(payload), t); err != nil {
			return nil, fmt.Errorf("decode type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var sources []SourceFile
	srcRows, err := s.db.QueryContext(ctx, `SELECT path, size, mod_time FROM java_sources ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var (
			src     SourceFile
			modTime string
		)
		if err := srcRows.Scan(&src.Path, &src.Size, &modTime); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if src.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
			return nil, fmt.Errorf("parse mod time of %s: %w", src.Path, err)
		}
		sources = append(sources, src)
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	if len(types) == 0 && len(sources) == 0 {
		return nil, ErrIndexNotBuilt
	}
	x := NewIndex(logger)
	x.Add(types...)
	x.setSources(sources)
	return x, nil
}
