package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLiteStore{db: db, clock: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Search returns every record in the namespace in insertion order.
func (s *SQLiteStore) Search(ns Namespace) ([]Entry, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		"SELECT id, value, created_at, updated_at FROM records WHERE kind = ? AND user_id = ? ORDER BY created_at, id",
		string(ns.Kind), ns.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: search %s: %w", ns, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var value string
		if err := rows.Scan(&entry.ID, &value, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		entry.Value = json.RawMessage(value)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: search %s: %w", ns, err)
	}
	return entries, nil
}

// Get retrieves one record by id, or ErrNotFound.
func (s *SQLiteStore) Get(ns Namespace, id string) (Entry, error) {
	if err := ns.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	var value string
	err := s.db.QueryRow(
		"SELECT id, value, created_at, updated_at FROM records WHERE kind = ? AND user_id = ? AND id = ?",
		string(ns.Kind), ns.UserID, id,
	).Scan(&entry.ID, &value, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("store: get %s/%s: %w", ns, id, err)
	}
	entry.Value = json.RawMessage(value)
	return entry, nil
}

// Put upserts the record. Repeated puts under the same id replace the value
// while keeping the original insertion position.
func (s *SQLiteStore) Put(ns Namespace, id string, value json.RawMessage) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("store: record id is required")
	}
	now := s.clock()
	_, err := s.db.Exec(
		`INSERT INTO records (kind, user_id, id, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (kind, user_id, id)
		 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(ns.Kind), ns.UserID, id, string(value), now, now,
	)
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", ns, id, err)
	}
	return nil
}
