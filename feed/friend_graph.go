package feed

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/model"
)

// PeersOf returns the ids of all users with an ACCEPTED friend request to or
// from userId. The friend graph is stored as directional request records, so
// "who is the peer" is resolved here once instead of at every read site.
//
// A non-existent userId yields an empty set rather than an error: feed
// assembly is read-only and should never hard-fail on a stale id. The result
// never contains userId itself, even if a malformed self-edge exists. No
// ordering guarantee.
func PeersOf(db *gorm.DB, userId string) ([]string, error) {
	var requests []model.FriendRequest
	err := db.
		Where("(sender_id = ? OR recipient_id = ?) AND status = ?",
			userId, userId, model.FriendRequestStatusAccepted).
		Find(&requests).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to resolve friend graph for user "+userId)
	}

	seen := map[string]bool{}
	peers := []string{}
	for idx := range requests {
		peer, err := requests[idx].PeerOf(userId)
		if err != nil || peer == userId || seen[peer] {
			continue
		}
		seen[peer] = true
		peers = append(peers, peer)
	}
	return peers, nil
}
