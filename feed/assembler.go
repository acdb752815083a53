package feed

import (
	"context"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/utils"
	. "github.com/studycircle/feedmux/utils/log"
)

const (
	// DefaultPageSize is used when the client does not ask for a limit.
	DefaultPageSize = 5
	// MaxPageSize caps the per-page query cost regardless of what the client
	// asks for.
	MaxPageSize = 50
)

// Assembler is the single authoritative implementation of feed construction.
// Every route that surfaces a personalized feed goes through Assemble; the
// merge semantics live here and nowhere else.
type Assembler struct {
	DB *gorm.DB
	// Metrics is optional, counters are skipped when nil.
	Metrics *statsd.Client
}

// Page is one feed response. NextCursor is empty once both streams are
// exhausted.
type Page struct {
	Posts      []*model.Post
	NextCursor string
}

// Assemble produces one ranked, paginated feed page for the viewer.
//
// The author set is the viewer plus all accepted friends. Posts matching the
// viewer's chosen tags (all posts, when no tags are chosen) come first,
// newest first with ties broken by id. When the preferred stream cannot fill
// the page and the viewer opted in, the remainder is backfilled with posts
// from the same author set matching none of the chosen tags, again purely
// chronological, from its own independent cursor position. Preferred content
// is rank prioritized over chronology: the two groups are concatenated, never
// interleaved.
//
// The preferred and backfill queries have no data dependency and run
// concurrently; both complete before the merge. Backfill is best effort: if
// its query fails the preferred page is still served. A preferred query
// failure fails the whole request, no feed is better than a silently wrong
// one.
func (a *Assembler) Assemble(ctx context.Context, viewerId string, token string, pageSize int) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	cursor := DecodeCursor(token)

	peers, err := PeersOf(a.DB, viewerId)
	if err != nil {
		return nil, errors.Wrap(utils.ErrUnavailable, err.Error())
	}
	authorIds := append(peers, viewerId)

	tags, backfillEnabled, err := PreferencesOf(a.DB, viewerId)
	if err != nil {
		return nil, errors.Wrap(utils.ErrUnavailable, err.Error())
	}

	preferredFilter := tagFilterNone
	if len(tags) > 0 {
		preferredFilter = tagFilterOverlap
	}
	// With no tags chosen there is nothing to backfill against: the preferred
	// query already degenerates to the plain chronological friend feed.
	runBackfill := backfillEnabled && len(tags) > 0

	var (
		preferred   []*model.Post
		spare       []*model.Post
		backfillErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var qerr error
		preferred, qerr = QueryPosts(gctx, a.DB, authorIds, preferredFilter, tags, cursor.Preferred, pageSize+1)
		return qerr
	})
	if runBackfill {
		g.Go(func() error {
			// Errors are captured, not returned: backfill must not cancel or
			// fail the preferred query.
			spare, backfillErr = QueryPosts(gctx, a.DB, authorIds, tagFilterDisjoint, tags, cursor.Backfill, pageSize+1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.count("feed.assemble.preferred_query_failure")
		return nil, errors.Wrap(utils.ErrUnavailable, err.Error())
	}

	hasMorePreferred := len(preferred) > pageSize
	if hasMorePreferred {
		preferred = preferred[:pageSize]
	}

	next := &Cursor{Preferred: cursor.Preferred, Backfill: cursor.Backfill}
	if len(preferred) > 0 {
		next.Preferred = PositionOf(preferred[len(preferred)-1])
	}

	posts := preferred
	hasMoreBackfill := false
	if !hasMorePreferred && runBackfill {
		if backfillErr != nil {
			// Degrade gracefully, the preferred page still goes out.
			Log.Warn("backfill query failed, serving preferred page only: ", backfillErr)
			a.count("feed.assemble.backfill_failure")
			spare = nil
		}
		remaining := pageSize - len(preferred)
		if len(spare) > remaining {
			hasMoreBackfill = true
			spare = spare[:remaining]
		}
		if len(spare) > 0 {
			next.Backfill = PositionOf(spare[len(spare)-1])
			posts = append(posts, spare...)
		}
	}

	// The preferred predicate requires a tag intersection (or no tag filter,
	// in which case backfill never runs) and the backfill predicate requires
	// none, so the two groups are disjoint by construction. Deduplicate
	// anyway: this is a contract of the merge, not an accident of the current
	// predicates.
	posts = dedupeById(posts)

	page := &Page{Posts: posts}
	if hasMorePreferred || hasMoreBackfill {
		page.NextCursor = EncodeCursor(next)
	}
	a.count("feed.assemble.page_served")
	return page, nil
}

// dedupeById drops any later occurrence of an already seen post id,
// preserving order.
func dedupeById(posts []*model.Post) []*model.Post {
	seen := map[string]bool{}
	out := posts[:0]
	for _, p := range posts {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		out = append(out, p)
	}
	return out
}

func (a *Assembler) count(name string) {
	if a.Metrics == nil {
		return
	}
	// Metric emission is fire and forget.
	_ = a.Metrics.Incr(name, nil, 1)
}
