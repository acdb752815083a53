package feed

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/studycircle/feedmux/model"
)

/*

Cursor is the opaque pagination token for feed pages.

A feed page is drawn from two independent streams, the preferred (tag
matching) stream and the backfill stream, so the token carries one position
per stream. Chaining both streams off a single scalar position skips or
duplicates items whenever the preferred pool runs out mid-page, which is
exactly the bug this compound layout exists to prevent.

A Position is the sort key of the last item served from its stream. The key
is (CreatedAt, Id) because creation timestamps are not unique; the id breaks
ties deterministically so no item is ever skipped or repeated when two posts
share a creation instant.

Clients must treat tokens as opaque. There is no offset variant: offsets are
not stable under concurrent inserts.

*/
type Cursor struct {
	Preferred *Position `json:"p,omitempty"`
	Backfill  *Position `json:"b,omitempty"`
}

// Position is a point in one stream ordered by created_at descending, id
// ascending on ties. CreatedAt is unix nanoseconds to survive the JSON round
// trip without precision loss.
type Position struct {
	CreatedAt int64  `json:"t"`
	Id        string `json:"i"`
}

// PositionOf returns the stream position right after the given post.
func PositionOf(p *model.Post) *Position {
	return &Position{CreatedAt: p.CreatedAt.UnixNano(), Id: p.Id}
}

// Time converts the stored nanosecond timestamp back to time.Time for use in
// the keyset predicate.
func (p *Position) Time() time.Time {
	return time.Unix(0, p.CreatedAt)
}

// EncodeCursor serializes the cursor into an opaque token. A cursor with no
// position on either stream encodes to the empty token.
func EncodeCursor(c *Cursor) string {
	if c == nil || (c.Preferred == nil && c.Backfill == nil) {
		return ""
	}
	raw, err := json.Marshal(c)
	if err != nil {
		// Cursor is a plain pair of value structs, this cannot fail.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque token. A malformed or tampered token never
// errors: the request is served as a fresh first page instead, mirroring how
// an out-of-sync refresh position falls back to the newest content.
func DecodeCursor(token string) *Cursor {
	if token == "" {
		return &Cursor{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return &Cursor{}
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return &Cursor{}
	}
	return &c
}
