package envstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Set assigns value to name, replacing any previous value
func (s *Store) Set(name, value string) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var old sql.NullString
	err = tx.QueryRow("SELECT value FROM variables WHERE name = ?", name).Scan(&old)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read variable: %w", err)
	}

	now := time.Now()
	if _, err := tx.Exec(`
		INSERT INTO variables (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, name, value, now); err != nil {
		return fmt.Errorf("failed to set variable: %w", err)
	}

	if err := recordEvent(tx, name, ActionSet, old, sql.NullString{String: value, Valid: true}, now); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns the value of name, or ErrNotFound
func (s *Store) Get(name string) (string, error) {
	var value string
	err := s.conn.QueryRow("SELECT value FROM variables WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get variable: %w", err)
	}
	return value, nil
}

// Unset removes name. Unsetting a missing variable returns ErrNotFound.
func (s *Store) Unset(name string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var old string
	err = tx.QueryRow("SELECT value FROM variables WHERE name = ?", name).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read variable: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM variables WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to unset variable: %w", err)
	}
	if err := recordEvent(tx, name, ActionUnset, sql.NullString{String: old, Valid: true}, sql.NullString{}, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// List returns all variables ordered by name
func (s *Store) List() ([]Variable, error) {
	rows, err := s.conn.Query("SELECT name, value, updated_at FROM variables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query variables: %w", err)
	}
	defer rows.Close()

	var vars []Variable
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.Name, &v.Value, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

// History returns the most recent changes to name, newest first
func (s *Store) History(name string, limit int) ([]Event, error) {
	rows, err := s.conn.Query(`
		SELECT id, name, action, old_value, new_value, timestamp
		FROM variable_events
		WHERE name = ?
		ORDER BY id DESC
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var old, nw sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Action, &old, &nw, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.OldValue = old.String
		e.NewValue = nw.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func recordEvent(tx *sql.Tx, name, action string, old, nw sql.NullString, at time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO variable_events (name, action, old_value, new_value, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, name, action, old, nw, at)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}
