package notifier

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/model"
	. "github.com/studycircle/feedmux/utils/log"
)

// Writer subscribes to friend-graph transition events and writes durable
// Notification rows. It runs in its own goroutine for the lifetime of the
// server; Run returns once the context is cancelled.
type Writer struct {
	DB         *gorm.DB
	Subscriber message.Subscriber
}

func NewWriter(db *gorm.DB, subscriber message.Subscriber) *Writer {
	return &Writer{DB: db, Subscriber: subscriber}
}

func (w *Writer) Run(ctx context.Context) error {
	messages, err := w.Subscriber.Subscribe(ctx, FriendEventTopic)
	if err != nil {
		return errors.Wrap(err, "fail to subscribe to friend events")
	}
	Log.Info("notification writer started")
	for msg := range messages {
		if err := w.ProcessOneMessage(msg); err != nil {
			Log.Errorf("fail to process friend event: %s, message: %s", err, string(msg.Payload))
		}
		// Ack unconditionally. A poisoned event would otherwise be redelivered
		// forever; the edge row stays the source of truth either way.
		msg.Ack()
	}
	Log.Info("notification writer stopped")
	return nil
}

// ProcessOneMessage decodes a single event and creates its notification.
// Re-processing the same edge transition does not create a duplicate: the
// (related_id, type) pair is checked before insert, and each edge transitions
// at most once per direction.
func (w *Writer) ProcessOneMessage(msg *message.Message) error {
	event, err := decodeFriendEvent(msg)
	if err != nil {
		return err
	}

	notification, err := buildNotification(event)
	if err != nil {
		return err
	}

	var count int64
	err = w.DB.Model(&model.Notification{}).
		Where("related_id = ? AND type = ?", notification.RelatedId, notification.Type).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "fail to check for existing notification")
	}
	if count > 0 {
		Log.Info("skip duplicate notification for request ", event.RequestId)
		return nil
	}

	if err := w.DB.Create(notification).Error; err != nil {
		return errors.Wrap(err, "fail to create notification for request "+event.RequestId)
	}
	return nil
}

func buildNotification(event *FriendEvent) (*model.Notification, error) {
	switch event.Kind {
	case FriendEventRequested:
		return &model.Notification{
			Id:        uuid.New().String(),
			UserID:    event.RecipientID,
			Type:      model.NotificationTypeFriendRequest,
			Title:     "New Friend Request",
			Content:   fmt.Sprintf("%s sent you a friend request", event.ActorName),
			RelatedId: event.RequestId,
		}, nil
	case FriendEventAccepted:
		return &model.Notification{
			Id:        uuid.New().String(),
			UserID:    event.SenderID,
			Type:      model.NotificationTypeFriendRequestAccepted,
			Title:     "Friend Request Accepted",
			Content:   fmt.Sprintf("%s accepted your friend request", event.ActorName),
			RelatedId: event.RequestId,
		}, nil
	}
	return nil, errors.Errorf("unknown friend event kind %q", event.Kind)
}
