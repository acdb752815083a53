package model

import (
	"fmt"
	"time"
)

/*

FriendRequest is the friend-graph edge record. The pair is directional on
purpose: SenderID initiated the request, RecipientID can accept or reject it,
and notification routing depends on which side is which. An ACCEPTED request
makes the two users peers in both directions.

Invariant: at most one non-rejected request exists between any unordered pair
at a time, in either direction. Enforced at the write site before insert.

Lifecycle: created PENDING, transitions exactly once to ACCEPTED or REJECTED.
An ACCEPTED request may be deleted (unfriend), which returns the pair to the
"no edge" state rather than back to PENDING.

*/
type FriendRequest struct {
	Id          string `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SenderID    string              `gorm:"index" json:"senderId"`
	Sender      User                `gorm:"foreignKey:SenderID" json:"sender"`
	RecipientID string              `gorm:"index" json:"recipientId"`
	Recipient   User                `gorm:"foreignKey:RecipientID" json:"recipient"`
	Status      FriendRequestStatus `gorm:"index" json:"status"`
}

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "PENDING"
	FriendRequestStatusAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestStatusRejected FriendRequestStatus = "REJECTED"
)

var AllFriendRequestStatus = []FriendRequestStatus{
	FriendRequestStatusPending,
	FriendRequestStatusAccepted,
	FriendRequestStatusRejected,
}

func (e FriendRequestStatus) IsValid() bool {
	switch e {
	case FriendRequestStatusPending, FriendRequestStatusAccepted, FriendRequestStatusRejected:
		return true
	}
	return false
}

func (e FriendRequestStatus) String() string {
	return string(e)
}

// PeerOf returns the other side of the edge relative to userId. Callers must
// not re-derive the sender/recipient conditional ad hoc.
func (r *FriendRequest) PeerOf(userId string) (string, error) {
	switch userId {
	case r.SenderID:
		return r.RecipientID, nil
	case r.RecipientID:
		return r.SenderID, nil
	}
	return "", fmt.Errorf("user %s is not part of friend request %s", userId, r.Id)
}
