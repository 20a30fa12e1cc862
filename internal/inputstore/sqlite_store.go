package inputstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/polarmd/dpinput/internal/persistence/sqlite"
)

const schemaVersion = 1

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore initializes a new SQLite input store.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("input store: migration failed: %w", err)
	}

	return s, nil
}

func (s *SqliteStore) migrate() error {
	var currentVersion int
	err := s.DB.QueryRow("PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return err
	}

	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS inputs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		checksum TEXT NOT NULL UNIQUE,
		species TEXT NOT NULL,
		numb_steps INTEGER NOT NULL,
		has_spin BOOLEAN NOT NULL DEFAULT 0,
		document BLOB NOT NULL,
		registered_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inputs_registered ON inputs(registered_at);
	`

	if _, err := tx.Exec(schema); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// Put stores a record. A record whose checksum already exists is rejected
// with ErrDuplicate.
func (s *SqliteStore) Put(ctx context.Context, rec Record) error {
	query := `
	INSERT INTO inputs (id, name, checksum, species, numb_steps, has_spin, document, registered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Checksum,
		strings.Join(rec.Species, ","),
		rec.NumbSteps, rec.HasSpin, rec.Document,
		rec.RegisteredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("put input: %w", err)
	}
	return nil
}

// Get fetches a record by ID.
func (s *SqliteStore) Get(ctx context.Context, id string) (Record, error) {
	query := `
	SELECT id, name, checksum, species, numb_steps, has_spin, document, registered_at
	FROM inputs WHERE id = ?`

	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get input: %w", err)
	}
	return rec, nil
}

// List returns all records, newest first, without document bodies.
func (s *SqliteStore) List(ctx context.Context) ([]Record, error) {
	query := `
	SELECT id, name, checksum, species, numb_steps, has_spin, registered_at
	FROM inputs ORDER BY registered_at DESC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var rec Record
		var species, registeredAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Checksum, &species,
			&rec.NumbSteps, &rec.HasSpin, &registeredAt); err != nil {
			return nil, fmt.Errorf("scan input row: %w", err)
		}
		rec.Species = splitSpecies(species)
		rec.RegisteredAt, _ = time.Parse(time.RFC3339Nano, registeredAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var species, registeredAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Checksum, &species,
		&rec.NumbSteps, &rec.HasSpin, &rec.Document, &registeredAt); err != nil {
		return Record{}, err
	}
	rec.Species = splitSpecies(species)
	rec.RegisteredAt, _ = time.Parse(time.RFC3339Nano, registeredAt)
	return rec, nil
}

func splitSpecies(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
