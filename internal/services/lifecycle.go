package services

import (
	"database/sql"
	"fmt"
	"time"
)

// touchTimestamps returns the value written to updated_at on every
// mutation (and created_at on insert). Stored in UTC.
func touchTimestamps() time.Time {
	return time.Now().UTC()
}

// setFlag flips a boolean column on a single row, but only when the row
// currently holds the opposite value. Reports whether a row was changed.
// Table and column names come from callers in this package, never from
// user input.
func setFlag(db *sql.DB, table, column, id string, value bool) (bool, error) {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = ?, updated_at = ? WHERE id = ? AND %s = ?",
		table, column, column,
	)
	res, err := db.Exec(query, value, touchTimestamps(), id, !value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// softDelete marks a row deleted without removing it. Reads filter on
// deleted = 0, so the row disappears from normal result sets.
func softDelete(db *sql.DB, table, id string) (bool, error) {
	return setFlag(db, table, "deleted", id, true)
}
