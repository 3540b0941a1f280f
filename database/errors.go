package database

import (
	"database/sql/driver"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Error taxonomy of the storage layer. Callers branch on these with
// errors.Is; the wrapped message keeps the entity/operation context and the
// driver-level cause.
var (
	// ErrBadDescriptor means the connection descriptor is malformed or names
	// an unsupported engine. Fatal at startup.
	ErrBadDescriptor = errors.New("unsupported connection descriptor")

	// ErrConnectionUnavailable means the probe/retry budget is exhausted or a
	// pre-flight probe failed. The caller decides between degraded mode and
	// aborting.
	ErrConnectionUnavailable = errors.New("database connection unavailable")

	// ErrConstraintViolation is a uniqueness or referential-integrity failure
	// on write. Ingestion callers treat duplicates as "already ingested".
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTransient is a mid-operation network failure. The whole unit of work
	// was rolled back and may be retried.
	ErrTransient = errors.New("transient database error")
)

// Postgres error classes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// wrapWrite classifies a write error into the storage taxonomy and annotates
// it with the failing operation. Non-classified errors are passed through
// wrapped, never swallowed.
func wrapWrite(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	op := fmt.Sprintf(format, args...)
	switch {
	case isConstraintViolation(err):
		return errors.Wrapf(ErrConstraintViolation, "%s: %v", op, err)
	case isTransient(err):
		return errors.Wrapf(ErrTransient, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}

func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation:
			return true
		}
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	// The embedded sqlite engine reports violations as plain messages, e.g.
	// "UNIQUE constraint failed: news_sources.name".
	return strings.Contains(err.Error(), "constraint failed")
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected EOF")
}
