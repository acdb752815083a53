package feed

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/utils"
)

// PreferencesOf returns the user's chosen tags and backfill flag. A missing
// preference row is not an error, it is equivalent to no tags with backfill
// disabled. Pure read.
func PreferencesOf(db *gorm.DB, userId string) ([]string, bool, error) {
	var pref model.FeedPreference
	result := db.Where("user_id = ?", userId).Limit(1).Find(&pref)
	if result.Error != nil {
		return nil, false, errors.Wrap(result.Error, "fail to read feed preferences for user "+userId)
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	tags, err := pref.TagList()
	if err != nil {
		return nil, false, errors.Wrap(err, "corrupted tag list for user "+userId)
	}
	return tags, pref.ShowOtherContent, nil
}

// SavePreferences upserts the preference row for the user. The row is created
// lazily on first save. Tags are deduplicated and must all belong to the
// controlled vocabulary.
func SavePreferences(db *gorm.DB, userId string, tags []string, showOtherContent bool) (*model.FeedPreference, error) {
	deduped := dedupeStrings(tags)
	if bad, ok := model.ValidateTags(deduped); !ok {
		return nil, errors.Wrapf(utils.ErrInvalidArgument, "unknown tag %q", bad)
	}

	raw, err := json.Marshal(deduped)
	if err != nil {
		return nil, errors.Wrap(err, "fail to encode tag list")
	}

	pref := model.FeedPreference{
		Id:               uuid.New().String(),
		UserID:           userId,
		Tags:             raw,
		ShowOtherContent: showOtherContent,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tags", "show_other_content", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return nil, errors.Wrap(utils.ErrUnavailable, "fail to upsert feed preferences for user "+userId+": "+err.Error())
	}
	return &pref, nil
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
