package errorz

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinels the storage layer reports instead of driver specific errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrConstraintViolated = errors.New("constraint violated")
	ErrUniqueViolated     = errors.New("unique constraint violated")
)

// MapDBErr translates database/sql and sqlite driver errors to the package
// sentinels. Errors it doesn't recognize pass through unchanged, nil stays
// nil.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var sErr sqlite3.Error
	if !errors.As(err, &sErr) || sErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return ErrUniqueViolated
	default:
		return ErrConstraintViolated
	}
}
