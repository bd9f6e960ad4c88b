// Package envstore persists boot script variables in SQLite so that values
// assigned with --set survive across invocations.
package envstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a variable is not set
var ErrNotFound = errors.New("variable not set")

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name can be used as a variable name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Store holds boot variables in a SQLite file
type Store struct {
	conn *sql.DB
}

// Variable is a stored name/value pair
type Variable struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// Event records a change to a variable
type Event struct {
	ID        int64
	Name      string
	Action    string
	OldValue  string
	NewValue  string
	Timestamp time.Time
}

// Event actions
const (
	ActionSet   = "set"
	ActionUnset = "unset"
)

// Open opens the variable store at path, creating the file and its parent
// directory on first use and bringing the schema up to date.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("no variable store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("variable store %s: %w", path, err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("variable store %s: %w", path, err)
	}
	// Boot scripts may run several probes at once; writers wait instead of
	// failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("variable store %s: %w", path, err)
	}

	s := &Store{conn: conn}
	if err := s.upgrade(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("variable store %s: upgrading schema: %w", path, err)
	}
	return s, nil
}

// Close releases the store
func (s *Store) Close() error {
	return s.conn.Close()
}

// schema lists the variable store layouts in order; entry i is version i+1.
var schema = []string{
	migrationV1,
	migrationV2,
}

// upgrade applies every schema step newer than the recorded version.
func (s *Store) upgrade() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	var current int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return err
	}

	for v := current + 1; v <= len(schema); v++ {
		if err := s.applySchema(v, schema[v-1]); err != nil {
			return fmt.Errorf("schema v%d: %w", v, err)
		}
	}
	return nil
}

func (s *Store) applySchema(version int, stmt string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// migrationV1 holds the current value of each variable
const migrationV1 = `
CREATE TABLE IF NOT EXISTS variables (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// migrationV2 keeps a history of changes for debugging boot scripts
const migrationV2 = `
CREATE TABLE IF NOT EXISTS variable_events (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    action TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_variable_events_name ON variable_events(name);
`
