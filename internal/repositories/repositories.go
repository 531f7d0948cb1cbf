// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, natural-key lookups and sequence generation.
package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., artist #42, song #1500).
// They are not exposed in API output but used internally for sorting and debugging.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// nullableID converts an empty row reference to a SQL NULL.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// nullableExternalID converts the zero external id to a SQL NULL so the
// UNIQUE constraint only binds rows that carry a remote natural key.
func nullableExternalID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// nullableDate converts the zero time to a SQL NULL.
func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
