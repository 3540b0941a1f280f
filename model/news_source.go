package model

import (
	"time"
)

/*

NewsSource is a data model for a configured feed we ingest news from

Example: an RSS feed, a scraped HTML page

Id: primary key, assigned by storage on creation
CreatedAt: time when entity is created

Name: display name of the source, globally unique
Url: origin URL the feed is fetched from
SourceType: how the source is ingested, for example "rss" or "html-scrape"
Category: optional default category for items from this source
IsActive: whether the source is currently ingested. Retired feeds are
	deactivated instead of deleted so historical items keep a valid reference.

*/
type NewsSource struct {
	Id         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at" gorm:"<-:create"`
	Name       string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Url        string    `json:"url" gorm:"size:1000;not null"`
	SourceType string    `json:"source_type" gorm:"size:50;not null"`
	Category   string    `json:"category" gorm:"size:100"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
}
