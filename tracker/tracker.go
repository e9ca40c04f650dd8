// Package tracker holds the client registry, the proposal ledger, the reply templates
// and the performance report. Every operation takes a request value instead of prompting,
// so the console layer only gathers input and renders results.
package tracker

import (
	"database/sql"
	"errors"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/jmoiron/sqlx"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

type base struct {
	db  *sqlx.DB
	now Clock
}

func newBase(conn *sqlx.DB, clock Clock) base {
	if clock == nil {
		clock = time.Now
	}
	return base{db: conn, now: clock}
}

// notFound converts sql.ErrNoRows into a NotFound error for the named entity.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("%s %d not found", entity, id)
	}
	return err
}
