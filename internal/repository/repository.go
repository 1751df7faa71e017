// Package repository implements PostgreSQL persistence for pages, blocks,
// action logs and the conversation records produced by the webhook pipeline.
package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// closeRows closes a result set, logging a failure
func closeRows(rows *sql.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close rows")
	}
}

// clampLimit bounds a listing limit to the allowed window
func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultListLimit
	}
	if limit > constants.MaxListLimit {
		return constants.MaxListLimit
	}
	return limit
}
