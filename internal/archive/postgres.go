package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const defaultPostgresDSN = "postgres://localhost/scmhelper?sslmode=disable"

const postgresDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	taken TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_data (
	snapshot_id TEXT NOT NULL,
	resource TEXT NOT NULL,
	payload BYTEA NOT NULL,
	PRIMARY KEY (snapshot_id, resource)
);`

// PostgresStore persists sealed snapshots to a PostgreSQL server, for
// clubs sharing one archive between operators.
type PostgresStore struct {
	db    *sql.DB
	vault *Vault
}

// NewPostgresStore opens the snapshot store over the given DSN.
func NewPostgresStore(dsn string, vault *Vault) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresDDL); err != nil {
		return nil, fmt.Errorf("create snapshot tables: %w", err)
	}
	return &PostgresStore{db: db, vault: vault}, nil
}

// Save writes one snapshot, each collection sealed separately.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken) VALUES ($1, $2)`,
		snap.ID, snap.Taken); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for resource, recs := range snap.Collections {
		payload, err := sealCollection(s.vault, recs)
		if err != nil {
			return fmt.Errorf("seal %s: %w", resource, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_data (snapshot_id, resource, payload) VALUES ($1, $2, $3)`,
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
func (s *PostgresStore) Load(ctx context.Context, date time.Time) (Snapshot, error) {
	query := `SELECT id, taken FROM snapshots ORDER BY taken DESC LIMIT 1`
	args := []any{}
	if !date.IsZero() {
		query = `SELECT id, taken FROM snapshots WHERE taken >= $1 AND taken < $2 ORDER BY taken DESC LIMIT 1`
		day := date.Truncate(24 * time.Hour)
		args = []any{day, day.AddDate(0, 0, 1)}
	}

	var id string
	var taken time.Time
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &taken); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, fmt.Errorf("no snapshot found")
		}
		return Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}

	snap := Snapshot{ID: id, Taken: taken, Collections: map[string][]domain.Record{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT resource, payload FROM snapshot_data WHERE snapshot_id = $1`, id)
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
func (s *PostgresStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, taken FROM snapshots ORDER BY taken DESC`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Taken); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
