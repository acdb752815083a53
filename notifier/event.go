package notifier

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
)

// FriendEventTopic carries friend-graph transition events. For now the bus is
// a golang channel implementation, but when needed it can be substituted with
// a broker-backed one without touching publishers or subscribers.
const FriendEventTopic = "friend_graph_transitions"

type FriendEventKind string

const (
	// FriendEventRequested: a PENDING edge was created. Notifies the recipient.
	FriendEventRequested FriendEventKind = "REQUESTED"
	// FriendEventAccepted: an edge transitioned to ACCEPTED. Notifies the
	// original sender.
	FriendEventAccepted FriendEventKind = "ACCEPTED"
)

// FriendEvent describes one friend-edge transition. Each transition happens
// at most once per edge per direction (the edge lifecycle transitions exactly
// once), which is what makes notification creation idempotent downstream.
type FriendEvent struct {
	Kind        FriendEventKind `json:"kind"`
	RequestId   string          `json:"requestId"`
	SenderID    string          `json:"senderId"`
	RecipientID string          `json:"recipientId"`
	// ActorName is the display name of the user who caused the transition,
	// used to render the notification content.
	ActorName string `json:"actorName"`
}

func (e *FriendEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func decodeFriendEvent(msg *message.Message) (*FriendEvent, error) {
	var event FriendEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, errors.Wrap(err, "fail to decode friend event")
	}
	if event.RequestId == "" {
		return nil, errors.New("friend event missing request id")
	}
	return &event, nil
}
