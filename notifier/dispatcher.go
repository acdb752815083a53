package notifier

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/model"
)

// Dispatcher publishes friend-graph transition events onto the bus. It lives
// on the mutation path but is strictly fire and forget there: a publish
// failure is surfaced to the caller for logging only and must never roll back
// the edge transition that triggered it. The edge transition is the source of
// truth; notifications are best effort and retryable out of band.
type Dispatcher struct {
	publisher message.Publisher
}

func NewDispatcher(publisher message.Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

// OnFriendRequestCreated emits the event that materializes exactly one
// notification for the recipient of a freshly created PENDING edge.
func (d *Dispatcher) OnFriendRequestCreated(req *model.FriendRequest, senderName string) error {
	return d.publish(&FriendEvent{
		Kind:        FriendEventRequested,
		RequestId:   req.Id,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		ActorName:   senderName,
	})
}

// OnFriendRequestAccepted emits the event that materializes exactly one
// notification for the original sender once the recipient accepts.
func (d *Dispatcher) OnFriendRequestAccepted(req *model.FriendRequest, recipientName string) error {
	return d.publish(&FriendEvent{
		Kind:        FriendEventAccepted,
		RequestId:   req.Id,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		ActorName:   recipientName,
	})
}

func (d *Dispatcher) publish(event *FriendEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return errors.Wrap(err, "fail to encode friend event")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := d.publisher.Publish(FriendEventTopic, msg); err != nil {
		return errors.Wrap(err, "fail to publish friend event for request "+event.RequestId)
	}
	return nil
}
