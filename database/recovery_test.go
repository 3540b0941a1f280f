package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/giftpropaganda/news-backend/model"
)

func TestRecreateEngineKeepsDataReachable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedSource(t, store, "survivor-feed")

	require.NoError(t, store.RecreateEngine(ctx))

	assert.True(t, store.Probe(ctx))
	mustSession(t, store, func(tx *gorm.DB) error {
		source, err := GetSourceByName(tx, "survivor-feed")
		require.NoError(t, err)
		assert.Equal(t, "rss", source.SourceType)
		return nil
	})
}

func TestRefreshMetadataReportsLiveTables(t *testing.T) {
	store := newTestStore(t)

	report := store.RefreshMetadata(context.Background())
	require.NoError(t, report.Warning)
	assert.Contains(t, report.Tables, "news_sources")
	assert.Contains(t, report.Tables, "news_items")
	assert.Empty(t, report.MissingModel)
}

func TestRefreshMetadataFlagsMissingTables(t *testing.T) {
	// fresh engine, schema never ensured
	path := filepath.Join(t.TempDir(), "empty.db")
	store, err := Open("sqlite://" + path)
	require.NoError(t, err)
	defer store.Close()

	report := store.RefreshMetadata(context.Background())
	require.NoError(t, report.Warning)
	assert.Contains(t, report.MissingModel, "news_sources")
	assert.Contains(t, report.MissingModel, "news_items")
}

func TestRefreshMetadataSwallowsFailureIntoWarning(t *testing.T) {
	store := newTestStore(t)
	closePool(t, store)

	report := store.RefreshMetadata(context.Background())
	assert.Error(t, report.Warning, "failure must be inspectable, not discarded")
	assert.Empty(t, report.Tables)
}

func TestTableNameFollowsNamingStrategy(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, "news_sources", tableName(store.handle(), &model.NewsSource{}))
	assert.Equal(t, "news_items", tableName(store.handle(), &model.NewsItem{}))

	// unparseable entities still produce a non-empty, identifiable name
	assert.NotEmpty(t, tableName(store.handle(), 42))
}

func TestRecreateEngineAfterPoolDeath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedSource(t, store, "feed-a")

	closePool(t, store)
	require.False(t, store.Probe(ctx))

	require.NoError(t, store.RecreateEngine(ctx))
	require.True(t, store.Probe(ctx))

	var count int64
	mustSession(t, store, func(tx *gorm.DB) error {
		return tx.Model(&model.NewsSource{}).Count(&count).Error
	})
	assert.Equal(t, int64(1), count)
}
