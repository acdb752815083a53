package feed

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/model"
)

// tagFilter selects the tag predicate of a post query.
type tagFilter int

const (
	// tagFilterNone applies no tag predicate at all.
	tagFilterNone tagFilter = iota
	// tagFilterOverlap keeps posts whose tag set intersects the given tags.
	tagFilterOverlap
	// tagFilterDisjoint keeps posts whose tag set intersects none of the
	// given tags, untagged posts included.
	tagFilterDisjoint
)

// QueryPosts fetches posts authored by any of authorIds, ordered by
// created_at descending with ties broken by id ascending, starting strictly
// after the given stream position. limit rows at most are returned; callers
// determine "has more" by asking for one row beyond the page and trimming it,
// never by counting.
func QueryPosts(ctx context.Context, db *gorm.DB, authorIds []string, filter tagFilter, tags []string, after *Position, limit int) ([]*model.Post, error) {
	if len(authorIds) == 0 || limit <= 0 {
		return []*model.Post{}, nil
	}

	q := db.WithContext(ctx).
		Model(&model.Post{}).
		Preload("User").
		Where("posts.user_id IN ?", authorIds)

	switch filter {
	case tagFilterOverlap:
		q = q.Where("posts.tags && ?", pq.Array(tags))
	case tagFilterDisjoint:
		// Untagged rows store NULL and NULL && x is NULL under three-valued
		// logic, so the negated overlap alone would drop them.
		q = q.Where("(posts.tags IS NULL OR NOT (posts.tags && ?))", pq.Array(tags))
	}

	if after != nil {
		// Keyset predicate over the compound sort key. The id comparison
		// flips because ties order ascending while time orders descending.
		q = q.Where("posts.created_at < ? OR (posts.created_at = ? AND posts.id > ?)",
			after.Time(), after.Time(), after.Id)
	}

	var posts []*model.Post
	err := q.Order("posts.created_at DESC, posts.id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to query posts")
	}
	return posts, nil
}

// QueryAuthorPosts is the single-author chronological page used by profile
// views. Same cursor machinery, one stream, no tag predicate.
func QueryAuthorPosts(ctx context.Context, db *gorm.DB, authorId string, after *Position, limit int) ([]*model.Post, error) {
	return QueryPosts(ctx, db, []string{authorId}, tagFilterNone, nil, after, limit)
}
