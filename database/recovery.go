package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/giftpropaganda/news-backend/model"
	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

// MetadataReport is the outcome of a best-effort metadata refresh. A non-nil
// Warning means the report may be stale; tests and operators can inspect it,
// unlike a silently discarded error.
type MetadataReport struct {
	Tables       []string
	MissingModel []string
	Warning      error
}

// RecreateEngine builds a fresh engine from the original descriptor, swaps
// the process-wide handle under the write lock and closes the old pool.
// Intended for manual reconnects after sustained probe failures; callers must
// drain active units of work first, the lock only protects the pointer swap,
// not in-flight sessions on the old engine.
func (s *Store) RecreateEngine(ctx context.Context) error {
	db, err := openHandle(s.descriptor)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.mu.Unlock()

	if old != nil {
		if sqlDB, err := old.DB(); err == nil {
			// best effort, the old pool may already be dead
			_ = sqlDB.Close()
		}
	}

	report := s.RefreshMetadata(ctx)
	if report.Warning != nil {
		Logger.Log.Warnf("metadata refresh after engine recreation failed: %v", report.Warning)
	}
	Logger.Log.Info("database engine recreated")
	return nil
}

// RefreshMetadata re-reads table metadata from the live database, catching
// the case where the schema was provisioned or altered out-of-band after
// process start. Best effort: failures are logged and folded into the report,
// because stale metadata is preferable to crashing a running service. An
// entity operation that later hits a genuinely missing table still fails
// explicitly at that point.
func (s *Store) RefreshMetadata(ctx context.Context) MetadataReport {
	migrator := s.handle().WithContext(ctx).Migrator()

	tables, err := migrator.GetTables()
	if err != nil {
		Logger.Log.Warnf("metadata refresh failed, keeping stale metadata: %v", err)
		return MetadataReport{Warning: err}
	}

	report := MetadataReport{Tables: tables}
	for _, entity := range []interface{}{&model.NewsSource{}, &model.NewsItem{}} {
		if !migrator.HasTable(entity) {
			report.MissingModel = append(report.MissingModel, tableName(s.handle(), entity))
		}
	}
	if len(report.MissingModel) > 0 {
		Logger.Log.Warnf("entity tables missing from live database: %v", report.MissingModel)
	}
	return report
}

// tableName resolves an entity to its table through the engine's naming
// strategy, so the report never carries an empty or hand-maintained name.
func tableName(db *gorm.DB, entity interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(entity); err != nil {
		return fmt.Sprintf("%T", entity)
	}
	return stmt.Table
}
