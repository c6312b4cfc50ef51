package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
)

// constraint markers as reported by SQLite.
const (
	uniqueMarker     = "UNIQUE constraint failed"
	foreignKeyMarker = "FOREIGN KEY constraint failed"
	checkMarker      = "CHECK constraint failed"
	notNullMarker    = "NOT NULL constraint failed"
)

// Translate maps a persistence error onto the error taxonomy. Taxonomy
// errors pass through unchanged and nil stays nil. op is the SQL operation
// (SELECT, INSERT, UPDATE, DELETE) and table the table it ran against.
func Translate(err error, op, table string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NewNotFound(table+" record not found", apperr.WithCause(err))
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, uniqueMarker):
		return apperr.NewDatabaseConstraint(constraintName(msg, uniqueMarker, "unique"), table, apperr.WithCause(err))
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, foreignKeyMarker):
		return apperr.NewDatabaseConstraint("foreign_key", table, apperr.WithCause(err))
	case errors.Is(err, gorm.ErrCheckConstraintViolated), strings.Contains(msg, checkMarker):
		return apperr.NewDatabaseConstraint(constraintName(msg, checkMarker, "check"), table, apperr.WithCause(err))
	case strings.Contains(msg, notNullMarker):
		return apperr.NewDatabaseConstraint(constraintName(msg, notNullMarker, "not_null"), table, apperr.WithCause(err))
	case isConnectionError(err):
		return apperr.NewDatabaseConnection(err)
	default:
		return apperr.NewDatabase(op, table, err)
	}
}

// constraintName extracts what follows "<marker>: " in a SQLite message,
// e.g. "products.name" or "chk_products_stock".
func constraintName(msg, marker, fallback string) string {
	i := strings.Index(msg, marker+": ")
	if i < 0 {
		return fallback
	}
	name := msg[i+len(marker)+2:]
	if j := strings.IndexAny(name, " ()"); j >= 0 {
		name = name[:j]
	}
	if name == "" {
		return fallback
	}
	return name
}

func isConnectionError(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "sql: database is closed")
}
