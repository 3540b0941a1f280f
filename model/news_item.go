package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

NewsItem is a single piece of ingested news

Id: primary key, assigned by storage on creation
CreatedAt: time when the item was first seen
UpdatedAt: time of the last mutation, refreshed automatically on update

SourceID: owning NewsSource, "belongs-to" relation. Must always resolve to an
	existing source; enforced with a foreign key at the storage boundary.
Title: item title in plain text
Content: item body in plain text
ContentHtml: optional rendered HTML body
Link: canonical URL of the item. Together with SourceID this is the
	deduplication key across repeated ingestion runs, enforced with a composite
	unique index so concurrent writers cannot insert the same entry twice.
PublishDate: time the item was published by the source
Category: item category
Media: optional structured media payload (galleries, embeds) stored as JSON
ImageUrl/VideoUrl: optional direct media URLs
ReadingTime: optional reading time estimate in minutes
ViewsCount: number of reads served, starts at 0
Author: optional author name
Subtitle: optional subtitle

*/
type NewsItem struct {
	Id          uint           `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time      `json:"created_at" gorm:"<-:create"`
	UpdatedAt   time.Time      `json:"updated_at"`
	SourceID    uint           `json:"source_id" gorm:"not null;uniqueIndex:idx_news_items_source_link"`
	Source      NewsSource     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Title       string         `json:"title" gorm:"size:1000;not null"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	ContentHtml string         `json:"content_html,omitempty" gorm:"type:text"`
	Link        string         `json:"link" gorm:"size:1000;not null;uniqueIndex:idx_news_items_source_link"`
	PublishDate time.Time      `json:"publish_date" gorm:"not null"`
	Category    string         `json:"category" gorm:"size:100;not null"`
	Media       datatypes.JSON `json:"media,omitempty"`
	ImageUrl    string         `json:"image_url,omitempty" gorm:"size:1000"`
	VideoUrl    string         `json:"video_url,omitempty" gorm:"size:1000"`
	ReadingTime int            `json:"reading_time,omitempty"`
	ViewsCount  int            `json:"views_count" gorm:"not null;default:0"`
	Author      string         `json:"author,omitempty" gorm:"size:200"`
	Subtitle    string         `json:"subtitle,omitempty" gorm:"size:500"`
}
