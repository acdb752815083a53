package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

/*

FeedPreference is one-to-one with User and drives feed personalization.

Tags: the user's chosen subject tags, stored as a JSON array. The row is
	created lazily on first save, absence is equivalent to no tags at all.
ShowOtherContent: when true the feed backfills pages with posts from the
	same author set that match none of the chosen tags.

*/
type FeedPreference struct {
	Id               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UserID           string         `gorm:"uniqueIndex"`
	Tags             datatypes.JSON `json:"tags"`
	ShowOtherContent bool           `json:"showOtherContent"`
}

// TagList decodes the stored JSON tag array. An empty or missing column
// decodes to nil, which downstream treats as "no tag filter".
func (p *FeedPreference) TagList() ([]string, error) {
	if len(p.Tags) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(p.Tags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
