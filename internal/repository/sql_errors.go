package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sumire/bugtracker/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	sqliteCheckFailed = "CHECK constraint failed: "
)

// classifySQLError translates driver constraint failures into domain errors.
// Anything it does not recognize is returned unchanged.
func classifySQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
		case pgCheckViolation:
			return checkViolation(pgErr.ConstraintName)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		code, msg := liteErr.Code(), liteErr.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			strings.Contains(msg, "UNIQUE constraint failed"):
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, msg)
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK,
			strings.Contains(msg, sqliteCheckFailed):
			return checkViolation(sqliteConstraintName(msg))
		}
	}
	return err
}

func checkViolation(constraint string) error {
	field := constraintField(constraint)
	return &domain.SchemaError{Fields: map[string]string{
		field: fmt.Sprintf("%s violates constraint %s", field, constraint),
	}}
}

// sqliteConstraintName extracts the constraint name from a message such as
// "constraint failed: CHECK constraint failed: bugs_status_check (275)".
func sqliteConstraintName(msg string) string {
	i := strings.LastIndex(msg, sqliteCheckFailed)
	if i < 0 {
		return ""
	}
	name := strings.TrimSpace(msg[i+len(sqliteCheckFailed):])
	if j := strings.IndexAny(name, " )"); j >= 0 {
		name = name[:j]
	}
	return name
}
