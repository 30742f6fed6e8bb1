// Package store persists the whole desk state as one JSON document in an
// embedded sqlite key-value table, keyed by a fixed namespace. Timestamps
// travel as RFC3339 strings and come back as time.Time, so a reloaded
// history is indistinguishable from the original.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantdesk/quantdesk/events"
	"github.com/quantdesk/quantdesk/ledger"
)

// DefaultNamespace keys the desk's single state document.
const DefaultNamespace = "QUANTDESK_STATE_V1"

const schema = `
CREATE TABLE IF NOT EXISTS app_state (
	namespace TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// AppState is everything worth surviving a restart.
type AppState struct {
	Ledger ledger.Snapshot `json:"ledger"`
	Events []events.Event  `json:"events,omitempty"`
}

type Store struct {
	db        *sql.DB
	namespace string
}

// Open creates or opens the backing database file. Empty namespace uses
// DefaultNamespace.
func Open(path, namespace string) (*Store, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}
	return &Store{db: db, namespace: namespace}, nil
}

// Save serializes state and replaces the namespace's document.
func (s *Store) Save(state *AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO app_state (namespace, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.namespace, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load rehydrates the saved state. A namespace with no document returns
// (nil, nil): first boot is not an error.
func (s *Store) Load() (*AppState, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM app_state WHERE namespace = ?`, s.namespace,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var state AppState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

// Reset drops the namespace's document.
func (s *Store) Reset() error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE namespace = ?`, s.namespace)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
