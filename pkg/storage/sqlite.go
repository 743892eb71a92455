package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
)

const createItemsTable = `
CREATE TABLE IF NOT EXISTS items (
    rowid_          INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid            TEXT NOT NULL,
    origin          TEXT NOT NULL,
    backend_name    TEXT NOT NULL,
    backend_version TEXT NOT NULL,
    category        TEXT NOT NULL,
    tag             TEXT,
    updated_on      REAL NOT NULL,
    timestamp       REAL NOT NULL,
    data            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_uuid ON items(uuid);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(origin, category, updated_on);
`

const insertItem = `
INSERT INTO items (
    uuid, origin, backend_name, backend_version,
    category, tag, updated_on, timestamp, data
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLite archives items into a local SQLite database. Items are appended;
// the uuid column is indexed but deliberately not unique, so successive
// harvests of the same crate coexist as separate rows.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database at path and bootstraps the
// schema. Parent directories are created as needed.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := conn.Exec(createItemsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create items schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Store(ctx context.Context, env backend.Envelope) error {
	data, err := json.Marshal(env.Data)
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", env.UUID, err)
	}

	_, err = s.conn.ExecContext(ctx, insertItem,
		env.UUID, env.Origin, env.BackendName, env.BackendVersion,
		string(env.Category), env.Tag, env.UpdatedOn, env.Timestamp, string(data))
	if err != nil {
		return fmt.Errorf("insert item %s: %w", env.UUID, err)
	}
	return nil
}

// Count returns the number of archived items, mainly for reporting at the
// end of a run.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error { return s.conn.Close() }

var _ Sink = (*SQLite)(nil)
