package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/giftpropaganda/news-backend/model"
	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

// EnsureSchema translates the entity model into tables, indexes and foreign
// keys on the live engine. It only creates what is absent and never drops or
// alters existing structures; schema evolution is an external migration
// concern. Safe to call on every process start.
//
// A failure here (missing privileges, broken DDL) must stop the bootstrap:
// serving traffic against an unverified schema corrupts ingestion.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db := s.handle().WithContext(ctx)
	if err := db.AutoMigrate(&model.NewsSource{}, &model.NewsItem{}); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	Logger.Log.Info("database schema verified")
	return nil
}
