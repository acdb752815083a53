package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

/*

Post is a piece of user generated content shown in feeds

Id: primary key
CreatedAt: creation time, the feed sort key. Ties are broken by Id so the
	(CreatedAt, Id) pair is a total order over all posts.
DeletedAt: soft delete time
UserID:
User: the author, "belongs-to" relation. A post is owned exclusively by its
	author and is only visible to the author's accepted friends and the author.
Content: post body in plain text
ImageUrl: optional attached image reference, upload itself is out of scope
Tags: subject tags, a subset of the controlled vocabulary in tags.go, stored
	as a postgres text array so tag overlap can be evaluated in the query

*/
type Post struct {
	Id        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
	UserID    string         `gorm:"index" json:"userId"`
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content   string         `json:"content"`
	ImageUrl  string         `json:"imageUrl"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
}
