package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/giftpropaganda/news-backend/model"
)

// Repository helpers over the entity model. All of them run inside a caller
// supplied unit of work (see WithSession) so a batch of related writes
// commits or rolls back together.

// CreateSource inserts a new feed source. Duplicate names surface as
// ErrConstraintViolation, the existing row stays intact.
func CreateSource(tx *gorm.DB, source *model.NewsSource) error {
	source.IsActive = true
	if err := tx.Create(source).Error; err != nil {
		return wrapWrite(err, "create source %q", source.Name)
	}
	return nil
}

// GetSourceByName looks a source up by its unique name.
func GetSourceByName(tx *gorm.DB, name string) (*model.NewsSource, error) {
	var source model.NewsSource
	if err := tx.Where("name = ?", name).First(&source).Error; err != nil {
		return nil, errors.Wrapf(err, "get source %q", name)
	}
	return &source, nil
}

// ListSources returns configured sources, optionally only the active ones.
func ListSources(tx *gorm.DB, activeOnly bool) ([]model.NewsSource, error) {
	query := tx.Order("id")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var sources []model.NewsSource
	if err := query.Find(&sources).Error; err != nil {
		return nil, errors.Wrap(err, "list sources")
	}
	return sources, nil
}

// DeactivateSource retires a feed without deleting it, so existing items keep
// a valid source reference.
func DeactivateSource(tx *gorm.DB, id uint) error {
	res := tx.Model(&model.NewsSource{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return wrapWrite(res.Error, "deactivate source %d", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "deactivate source %d", id)
	}
	return nil
}

// GetNewsItemByLink fetches an item by its deduplication key.
func GetNewsItemByLink(tx *gorm.DB, sourceID uint, link string) (*model.NewsItem, error) {
	var item model.NewsItem
	err := tx.Where("source_id = ? AND link = ?", sourceID, link).First(&item).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get news item %q for source %d", link, sourceID)
	}
	return &item, nil
}

// UpsertNewsItem ingests one item idempotently, keyed on (source_id, link).
//
// First sighting of a link inserts and reports created=true. A re-ingested
// link updates the mutable fields in place: same row id, created_at
// untouched, updated_at refreshed. Either way item carries the stored row on
// return. A dangling source reference surfaces as ErrConstraintViolation
// with no partial row.
//
// The write is a single ON CONFLICT statement against the (source_id, link)
// unique index, so two concurrent ingestions of the same entry cannot race a
// check-then-insert: the loser's insert becomes the update. The pre-read only
// feeds the created flag.
func UpsertNewsItem(tx *gorm.DB, item *model.NewsItem) (created bool, err error) {
	_, lookupErr := GetNewsItemByLink(tx, item.SourceID, item.Link)
	if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return false, wrapWrite(lookupErr, "look up news item %q", item.Link)
	}
	seen := lookupErr == nil

	assignments := map[string]interface{}{
		"title":        item.Title,
		"content":      item.Content,
		"content_html": item.ContentHtml,
		"publish_date": item.PublishDate,
		"category":     item.Category,
		"media":        item.Media,
		"image_url":    item.ImageUrl,
		"video_url":    item.VideoUrl,
		"reading_time": item.ReadingTime,
		"author":       item.Author,
		"subtitle":     item.Subtitle,
		// the view counter only moves forward
		"views_count": gorm.Expr(
			"CASE WHEN excluded.views_count > news_items.views_count" +
				" THEN excluded.views_count ELSE news_items.views_count END"),
		"updated_at": time.Now(),
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}, {Name: "link"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(item).Error
	if err != nil {
		return false, wrapWrite(err, "ingest news item %q", item.Link)
	}

	// re-read so the caller sees the stored row: on the conflict path the
	// engine kept the original id and created_at
	stored, err := GetNewsItemByLink(tx, item.SourceID, item.Link)
	if err != nil {
		return false, errors.Wrapf(err, "reload news item %q", item.Link)
	}
	*item = *stored
	return !seen, nil
}

// GetNewsItemById fetches one item.
func GetNewsItemById(tx *gorm.DB, id uint) (*model.NewsItem, error) {
	var item model.NewsItem
	if err := tx.First(&item, id).Error; err != nil {
		return nil, errors.Wrapf(err, "get news item %d", id)
	}
	return &item, nil
}

// NewsItemQuery narrows ListNewsItems. Zero values mean "no filter".
type NewsItemQuery struct {
	SourceID uint
	Category string
	Limit    int
	Offset   int
}

const newsItemsQueryLimit = 100

// ListNewsItems returns items newest-first.
func ListNewsItems(tx *gorm.DB, q NewsItemQuery) ([]model.NewsItem, error) {
	limit := q.Limit
	if limit <= 0 || limit > newsItemsQueryLimit {
		limit = newsItemsQueryLimit
	}
	query := tx.Order("publish_date DESC, id DESC").Limit(limit).Offset(q.Offset)
	if q.SourceID != 0 {
		query = query.Where("source_id = ?", q.SourceID)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	var items []model.NewsItem
	if err := query.Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list news items")
	}
	return items, nil
}

// IncrementViews bumps the view counter without racing other readers.
func IncrementViews(tx *gorm.DB, id uint) error {
	res := tx.Model(&model.NewsItem{}).Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return wrapWrite(res.Error, "increment views for news item %d", id)
	}
	return nil
}
