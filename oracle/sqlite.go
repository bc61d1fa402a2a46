package oracle

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// CrossCheckSQLite loads the dataset into an in-memory SQLite database
// and compares the engine's per-table LIKE match counts against SQLite's
// own LIKE evaluation. This pins the engine to real SQL semantics rather
// than just internal consistency.
//
// case_sensitive_like is enabled: the engine matches bytes, and default
// SQLite LIKE folds ASCII case. Patterns are passed without ESCAPE, so
// they must not rely on escaping.
func CrossCheckSQLite(patterns []string, opts like.Options, ds *storage.Dataset) ([]Mismatch, error) {
	if opts.TreatUnderscoreAsLiteral {
		return nil, fmt.Errorf("oracle: SQLite LIKE has no literal-underscore mode")
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("oracle: opening sqlite: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA case_sensitive_like = ON"); err != nil {
		return nil, fmt.Errorf("oracle: enabling case_sensitive_like: %w", err)
	}
	if _, err := db.Exec("CREATE TABLE corpus (tbl TEXT NOT NULL, data TEXT NOT NULL)"); err != nil {
		return nil, fmt.Errorf("oracle: creating corpus table: %w", err)
	}

	insert, err := db.Prepare("INSERT INTO corpus (tbl, data) VALUES (?, ?)")
	if err != nil {
		return nil, fmt.Errorf("oracle: preparing insert: %w", err)
	}
	defer insert.Close()

	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		for ri := range table.Rows {
			if _, err := insert.Exec(table.Name, string(table.Rows[ri].Data)); err != nil {
				return nil, fmt.Errorf("oracle: inserting row into corpus: %w", err)
			}
		}
	}

	count, err := db.Prepare("SELECT COUNT(*) FROM corpus WHERE tbl = ? AND data LIKE ?")
	if err != nil {
		return nil, fmt.Errorf("oracle: preparing count: %w", err)
	}
	defer count.Close()

	var out []Mismatch
	for pi, src := range patterns {
		p, err := like.Compile([]byte(src), kernel.Scalar{}, opts)
		if err != nil {
			return nil, err
		}
		actual := countsPerTable(p, ds)

		for ti := range ds.Tables {
			name := ds.Tables[ti].Name

			var expected int
			if err := count.QueryRow(name, src).Scan(&expected); err != nil {
				return nil, fmt.Errorf("oracle: counting LIKE %q on %s: %w", src, name, err)
			}

			if expected != actual[name] {
				out = append(out, Mismatch{
					Algo:         "sqlite",
					PatternIndex: pi,
					File:         name,
					Op:           "like",
					Expected:     expected,
					Actual:       actual[name],
				})
			}
		}
	}
	return out, nil
}
