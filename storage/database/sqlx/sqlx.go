// Package sqlxrepos implements the repositories on PostgreSQL through sqlx.
package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

// trapNoRowsErr maps sql.ErrNoRows to notFound and any other driver error to an UnavailableError.
func trapNoRowsErr(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return core.NewUnavailableError(err, op)
}

// checkAffected reports notFound when res touched no row.
func checkAffected(res sql.Result, notFound error, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewUnavailableError(err, op)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func newID() string { return uuid.New().String() }
