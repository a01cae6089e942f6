// Package corpusstore is the embedded relational store holding the
// normalized corpus: meta, member, message, name_history, plus derived
// indexes, with versioned migrations (spec.md §4.4).
package corpusstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chatlab/corpus/internal/chaterr"

	_ "modernc.org/sqlite"
)

// Store is a single embedded database file. A Store opened read-write owns
// the only writer connection (the import worker, §4.7); Stores opened via
// OpenReadOnly are analytics-worker snapshots and never write.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	path     string
	readOnly bool
}

// Open opens (creating if necessary) the database file at path and applies
// any pending migrations transactionally. An empty path uses ":memory:".
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, chaterr.New(chaterr.KindIO, "corpusstore.Open", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, chaterr.New(chaterr.KindIO, "corpusstore.Open", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.Open", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.Open", err)
	}

	s := &Store{db: db, path: path}
	if err := s.applyMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens a read-only snapshot connection to an existing database
// file, used by analytics workers (§4.7). It never runs migrations; a
// database whose schema_migrations table reports a version in the future
// relative to the code's declared Migrations is rejected as StoreIntegrity.
func OpenReadOnly(path string) (*Store, error) {
	if path == "" || path == ":memory:" {
		return nil, chaterr.New(chaterr.KindIO, "corpusstore.OpenReadOnly", fmt.Errorf("read-only snapshots require a file-backed database"))
	}
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, chaterr.New(chaterr.KindIO, "corpusstore.OpenReadOnly", err)
	}

	s := &Store{db: db, path: path, readOnly: true}
	version, err := s.currentVersion()
	if err != nil {
		db.Close()
		return nil, chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.OpenReadOnly", err)
	}
	if version > latestVersion() {
		db.Close()
		return nil, chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.OpenReadOnly", fmt.Errorf("database schema_version %d is newer than this build's latest known migration %d", version, latestVersion()))
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the raw *sql.DB for packages (analytics, catalog) that need to
// compose their own queries against it.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) applyMigrations() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", err)
	}

	current, err := s.currentVersionLocked()
	if err != nil {
		return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", err)
	}

	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err))
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().Unix()); err != nil {
			tx.Rollback()
			return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", err)
		}
		if err := tx.Commit(); err != nil {
			return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.applyMigrations", err)
		}
	}
	return nil
}

func (s *Store) currentVersion() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentVersionLocked()
}

func (s *Store) currentVersionLocked() (int, error) {
	var exists int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var version sql.NullInt64
	if err := s.db.QueryRow(`SELECT max(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// SchemaVersion returns the database's currently applied schema version.
func (s *Store) SchemaVersion() (int, error) {
	return s.currentVersion()
}

// PendingMigrations reports, as human-readable reasons, the migrations
// declared in code but not yet applied to this database (§6 migrations.pending).
func (s *Store) PendingMigrations() ([]MigrationInfo, error) {
	current, err := s.currentVersion()
	if err != nil {
		return nil, chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.PendingMigrations", err)
	}
	var pending []MigrationInfo
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		pending = append(pending, MigrationInfo{
			Version:     m.Version,
			Description: m.Description,
			UserMessage: fmt.Sprintf("schema upgrade %d: %s", m.Version, m.Description),
		})
	}
	return pending, nil
}

// TableSchemas reports the live schema of the corpus tables for schema.get.
func (s *Store) TableSchemas(ctx context.Context) ([]TableSchema, error) {
	tables := []string{"meta", "member", "message", "name_history"}
	var out []TableSchema
	for _, name := range tables {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, name))
		if err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "corpusstore.TableSchemas", err)
		}
		var ts TableSchema
		ts.Name = name
		for rows.Next() {
			var cid int
			var colName, colType string
			var notNull, pk int
			var dflt sql.NullString
			if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return nil, chaterr.New(chaterr.KindInternal, "corpusstore.TableSchemas", err)
			}
			ts.Columns = append(ts.Columns, TableColumn{Name: colName, Type: colType, PK: pk > 0})
		}
		rows.Close()
		out = append(out, ts)
	}
	return out, nil
}

// BeginImportTx starts the single write transaction an import batch commits
// into. Only valid on a read-write Store.
func (s *Store) BeginImportTx(ctx context.Context) (*sql.Tx, error) {
	if s.readOnly {
		return nil, chaterr.New(chaterr.KindInternal, "corpusstore.BeginImportTx", fmt.Errorf("store opened read-only"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.BeginTx(ctx, nil)
}
