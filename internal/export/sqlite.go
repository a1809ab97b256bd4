// Package export copies stored survey responses into a SQLite database for
// offline analysis. The JSON array file stays the source of truth; the
// database is rebuilt from it on every export.
package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// now is the export timestamp source; tests pin it.
var now = func() time.Time { return time.Now().UTC() }

// ToSQLite writes records into a fresh SQLite database at dbPath, replacing
// any existing file. The database is built under a temporary name in the
// same directory and renamed into place, so a failed export leaves the
// previous database untouched. Returns the number of rows written.
func ToSQLite(ctx context.Context, records []json.RawMessage, dbPath, source string) (int, error) {
	dir := filepath.Dir(dbPath)
	tmp, err := os.CreateTemp(dir, ".export-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp database: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing temp database: %w", err)
	}

	if err := populate(ctx, tmpName, records, source); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, dbPath); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("renaming temp database: %w", err)
	}
	return len(records), nil
}

func populate(ctx context.Context, path string, records []json.RawMessage, source string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertResponse)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	exportedAt := now().Format(time.RFC3339)
	var buf bytes.Buffer
	for i, rec := range records {
		buf.Reset()
		if err := json.Compact(&buf, rec); err != nil {
			return fmt.Errorf("compacting response %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, i+1, buf.String(), exportedAt); err != nil {
			return fmt.Errorf("inserting response %d: %w", i+1, err)
		}
	}

	meta := [][2]string{
		{"source", source},
		{"exported_at", exportedAt},
		{"count", strconv.Itoa(len(records))},
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, insertExportMeta, kv[0], kv[1]); err != nil {
			return fmt.Errorf("writing export metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export transaction: %w", err)
	}
	return nil
}
