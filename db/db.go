package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/models"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var schema = []struct {
	name string
	ddl  string
}{
	{
		name: "clients",
		ddl: `
			CREATE TABLE IF NOT EXISTS clients (
				client_id INTEGER PRIMARY KEY AUTOINCREMENT,
				full_name TEXT NOT NULL,
				email TEXT UNIQUE,
				phone TEXT,
				registration_date TEXT NOT NULL
			);`,
	},
	{
		name: "proposals",
		ddl: `
			CREATE TABLE IF NOT EXISTS proposals (
				proposal_id INTEGER PRIMARY KEY AUTOINCREMENT,
				client_id INTEGER NOT NULL,
				project_name TEXT NOT NULL,
				project_description TEXT NOT NULL DEFAULT '',
				proposal_value REAL NOT NULL DEFAULT 0 CHECK (proposal_value >= 0),
				status INTEGER NOT NULL CHECK (status BETWEEN 1 AND 4),
				proposal_link TEXT NOT NULL DEFAULT '',
				questionnaire_link TEXT NOT NULL DEFAULT '',
				contract_link TEXT NOT NULL DEFAULT '',
				send_date TEXT NOT NULL,
				update_date TEXT NOT NULL,
				FOREIGN KEY (client_id) REFERENCES clients(client_id)
			);`,
	},
	{
		name: "standard_replies",
		ddl: `
			CREATE TABLE IF NOT EXISTS standard_replies (
				reply_id INTEGER PRIMARY KEY AUTOINCREMENT,
				type TEXT NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT ''
			);`,
	},
	{
		name: "vector_index",
		ddl: `
			CREATE TABLE IF NOT EXISTS vector_index (
				name TEXT PRIMARY KEY NOT NULL,
				client TEXT NOT NULL,
				model TEXT NOT NULL,
				dimensions INTEGER NOT NULL,
				proposals INTEGER NOT NULL DEFAULT 0,
				built_at TEXT NOT NULL
			);`,
	},
}

// InitDB opens the sqlite file at path and creates the tables that do not exist yet.
func InitDB(path string) (*sqlx.DB, error) {
	sqlite_vec.Auto()

	conn, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one writer, one reader: the interactive session
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, apperror.Database(err, fmt.Sprintf("error connecting to database %s", path))
	}

	for _, table := range schema {
		if _, err := conn.Exec(table.ddl); err != nil {
			_ = conn.Close()
			return nil, apperror.Database(err, fmt.Sprintf("error creating %s table", table.name))
		}
	}

	return conn, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(models.TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func lastInsertID(ctx context.Context, conn *sqlx.DB, query string, args ...any) (int64, error) {
	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}
