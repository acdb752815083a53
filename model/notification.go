package model

import "time"

/*

Notification is a durable record created as a side effect of a friend-graph
mutation. Only the read flag is ever mutated after creation, and only by the
recipient.

UserID: the recipient
Type: what triggered the notification
RelatedId: id of the triggering entity, a friend request id for both types
Read: whether the recipient has seen it

*/
type Notification struct {
	Id        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UserID    string           `gorm:"index" json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	RelatedId string           `gorm:"index" json:"relatedId"`
	Read      bool             `json:"read"`
}

type NotificationType string

const (
	NotificationTypeFriendRequest         NotificationType = "FRIEND_REQUEST"
	NotificationTypeFriendRequestAccepted NotificationType = "FRIEND_REQUEST_ACCEPTED"
)

func (e NotificationType) IsValid() bool {
	switch e {
	case NotificationTypeFriendRequest, NotificationTypeFriendRequestAccepted:
		return true
	}
	return false
}

func (e NotificationType) String() string {
	return string(e)
}
