package database

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

// Session is the unit-of-work callback. Returning nil commits the whole
// transaction, returning an error rolls it back. Same shape as gorm's
// Transaction callback so repository helpers compose directly.
type Session func(tx *gorm.DB) error

// WithSession runs fn inside one unit of work bound to a single pooled
// connection.
//
// A liveness probe runs before fn so a stale pooled connection surfaces as
// ErrConnectionUnavailable instead of an opaque mid-transaction failure. On
// any error from fn the transaction is rolled back and the error is
// re-signaled to the caller after cleanup. The connection goes back to the
// pool on every exit path, including panics, which gorm converts into a
// rollback before re-raising.
func (s *Store) WithSession(ctx context.Context, fn Session) error {
	if err := s.probe(ctx); err != nil {
		Logger.Log.Errorf("session pre-flight probe failed: %v", err)
		return errors.Wrapf(ErrConnectionUnavailable, "pre-flight probe: %v", err)
	}
	return s.handle().WithContext(ctx).Transaction(fn)
}
