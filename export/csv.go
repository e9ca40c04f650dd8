// Package export writes database tables to CSV files.
package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/jmoiron/sqlx"
)

// Tables lists the tables that can be exported, in menu order.
var Tables = []string{"clients", "proposals", "standard_replies"}

// CSV exports tables into Dir as <table>.csv.
type CSV struct {
	Dir string
	DB  *sqlx.DB
}

func NewCSV(conn *sqlx.DB, dir string) *CSV {
	return &CSV{Dir: dir, DB: conn}
}

func exportable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

// Table writes a header row and every row of table, replacing any previous export.
// It returns the path of the written file.
func (e *CSV) Table(ctx context.Context, table string) (string, error) {
	if !exportable(table) {
		return "", apperror.Validation("table %q cannot be exported", table)
	}

	rows, err := e.DB.QueryxContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read %s columns: %w", table, err)
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir %s: %w", e.Dir, err)
	}
	path := filepath.Join(e.Dir, table+".csv")

	count, err := replaceFile(e.Dir, path, func(w io.Writer) (int, error) {
		return writeRows(w, columns, rows)
	})
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", table, err)
	}

	logger.WithOp("export_csv").WithField("table", table).WithField("rows", count).WithField("path", path).Info("table exported")
	return path, nil
}

// replaceFile runs write against a temp file in dir and renames it to path only when
// write succeeds, so a failed export leaves the previous file intact.
func replaceFile(dir, path string, write func(io.Writer) (int, error)) (int, error) {
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	count, err := write(tmp)
	if err != nil {
		return 0, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return 0, fmt.Errorf("failed to set mode on %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return count, nil
}

// rowScanner is the part of *sqlx.Rows the CSV writer reads from.
type rowScanner interface {
	Next() bool
	SliceScan() ([]any, error)
	Err() error
}

func writeRows(out io.Writer, columns []string, rows rowScanner) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return count, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cell(v)
		}
		if err := w.Write(record); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("error during row iteration: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("failed to flush: %w", err)
	}
	return count, nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case sql.RawBytes:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
