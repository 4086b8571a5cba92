package replication

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version of the shared database.
const CurrentSchemaVersion = 1

// Record describes one replicated document.
type Record struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// SQLiteBridge shares documents through a SQLite file, typically placed in a
// folder synced between devices.
type SQLiteBridge struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the shared database at path.
func OpenSQLite(path string) (*SQLiteBridge, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create sync directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sync database: %w", err)
	}
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)

	return &SQLiteBridge{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS replicas (
		  path       TEXT PRIMARY KEY,
		  namespace  TEXT NOT NULL,
		  doc_key    TEXT NOT NULL,
		  value      BLOB NOT NULL,
		  updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_replicas_namespace
		ON replicas(namespace, doc_key);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", 1)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// SchemaVersion reports the applied schema version.
func (bridge *SQLiteBridge) SchemaVersion() (int, error) {
	return userVersion(bridge.db)
}

// Push upserts the document; the latest write wins.
func (bridge *SQLiteBridge) Push(ctx context.Context, namespace, key string, value []byte) error {
	_, err := bridge.db.ExecContext(ctx, `
		INSERT INTO replicas (path, namespace, doc_key, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  value = excluded.value,
		  updated_at = excluded.updated_at`,
		Path(namespace, key), namespace, key, value, bridge.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("push %s: %w", Path(namespace, key), err)
	}
	return nil
}

// PullOnce reads the document, reporting false when no peer has written it.
func (bridge *SQLiteBridge) PullOnce(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var value []byte
	err := bridge.db.QueryRowContext(ctx,
		`SELECT value FROM replicas WHERE path = ?`, Path(namespace, key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pull %s: %w", Path(namespace, key), err)
	}
	return value, true, nil
}

// List returns the documents of namespace ordered by key.
func (bridge *SQLiteBridge) List(ctx context.Context, namespace string) ([]Record, error) {
	rows, err := bridge.db.QueryContext(ctx, `
		SELECT doc_key, length(value), updated_at
		FROM replicas
		WHERE namespace = ?
		ORDER BY doc_key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", namespace, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var updatedAt int64
		if err := rows.Scan(&record.Key, &record.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("list %s: %w", namespace, err)
		}
		record.UpdatedAt = time.UnixMilli(updatedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close closes the database.
func (bridge *SQLiteBridge) Close() error {
	return bridge.db.Close()
}
