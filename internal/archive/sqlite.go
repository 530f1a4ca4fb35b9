package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	taken TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_data (
	snapshot_id TEXT NOT NULL,
	resource TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (snapshot_id, resource)
);`

// SQLiteStore persists sealed snapshots to a single SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	vault *Vault
}

// NewSQLiteStore opens (or creates) the snapshot database. An empty
// path uses the default under the user's configuration directory.
func NewSQLiteStore(path string, vault *Vault) (*SQLiteStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, config.Dir, "backups", "archive.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteDDL); err != nil {
		return nil, fmt.Errorf("create snapshot tables: %w", err)
	}
	return &SQLiteStore{db: db, vault: vault}, nil
}

// Save writes one snapshot, each collection sealed separately.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken) VALUES (?, ?)`,
		snap.ID, snap.Taken.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for resource, recs := range snap.Collections {
		payload, err := sealCollection(s.vault, recs)
		if err != nil {
			return fmt.Errorf("seal %s: %w", resource, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_data (snapshot_id, resource, payload) VALUES (?, ?, ?)`,
			snap.ID, resource, payload); err != nil {
			return fmt.Errorf("insert %s: %w", resource, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load retrieves the latest snapshot for the date, or the latest
// overall for the zero time.
func (s *SQLiteStore) Load(ctx context.Context, date time.Time) (Snapshot, error) {
	query := `SELECT id, taken FROM snapshots ORDER BY taken DESC LIMIT 1`
	args := []any{}
	if !date.IsZero() {
		query = `SELECT id, taken FROM snapshots WHERE taken >= ? AND taken < ? ORDER BY taken DESC LIMIT 1`
		day := date.Truncate(24 * time.Hour)
		args = []any{day.Format(time.RFC3339), day.AddDate(0, 0, 1).Format(time.RFC3339)}
	}

	var id, taken string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &taken); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, fmt.Errorf("no snapshot found")
		}
		return Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}
	when, err := time.Parse(time.RFC3339, taken)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot time: %w", err)
	}

	snap := Snapshot{ID: id, Taken: when, Collections: map[string][]domain.Record{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT resource, payload FROM snapshot_data WHERE snapshot_id = ?`, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("select snapshot data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var resource string
		var payload []byte
		if err := rows.Scan(&resource, &payload); err != nil {
			return Snapshot{}, fmt.Errorf("scan: %w", err)
		}
		recs, err := openCollection(s.vault, payload)
		if err != nil {
			return Snapshot{}, fmt.Errorf("open %s: %w", resource, err)
		}
		snap.Collections[resource] = recs
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate snapshot data: %w", err)
	}
	return snap, nil
}

// List returns metadata for every stored snapshot, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, taken FROM snapshots ORDER BY taken DESC`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []Info
	for rows.Next() {
		var id, taken string
		if err := rows.Scan(&id, &taken); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		when, err := time.Parse(time.RFC3339, taken)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot time: %w", err)
		}
		infos = append(infos, Info{ID: id, Taken: when})
	}
	return infos, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sealCollection(vault *Vault, recs []domain.Record) ([]byte, error) {
	plain, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if vault == nil {
		return plain, nil
	}
	return vault.Seal(plain)
}

func openCollection(vault *Vault, payload []byte) ([]domain.Record, error) {
	plain := payload
	if vault != nil {
		var err error
		plain, err = vault.Open(payload)
		if err != nil {
			return nil, err
		}
	}
	var recs []domain.Record
	if err := json.Unmarshal(plain, &recs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return recs, nil
}
