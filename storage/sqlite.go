package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// LoadSQLiteColumn loads one text column of one table from a SQLite
// database file into an arena-backed table named "table.column". Row
// order follows rowid, so repeated loads see the same sequence.
//
// A nil limit means unbounded; refused rows are skipped, matching the
// delimited loader.
func LoadSQLiteColumn(arena *Arena, path, table, column string, limit *ByteLimit) (Table, error) {
	if !validSQLiteIdent(table) || !validSQLiteIdent(column) {
		return Table{}, fmt.Errorf("storage: invalid sqlite identifier %q.%q", table, column)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Table{}, fmt.Errorf("storage: opening sqlite database %s: %w", path, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT CAST(%q AS TEXT) FROM %q ORDER BY rowid`, column, table)
	rows, err := db.Query(query)
	if err != nil {
		return Table{}, fmt.Errorf("storage: querying %s.%s from %s: %w", table, column, path, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return Table{}, fmt.Errorf("storage: scanning %s.%s from %s: %w", table, column, path, err)
		}
		if !value.Valid {
			continue
		}
		if limit != nil && !limit.TryReserve(len(value.String)) {
			continue
		}
		data, err := arena.CopyString(value.String)
		if err != nil {
			return Table{}, err
		}
		out = append(out, Row{Data: data})
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("storage: reading %s.%s from %s: %w", table, column, path, err)
	}

	return Table{Name: table + "." + column, Rows: out}, nil
}

// validSQLiteIdent rejects identifiers that would escape the quoting in
// the query template.
func validSQLiteIdent(s string) bool {
	return s != "" && !strings.ContainsAny(s, "\"`[]';")
}
