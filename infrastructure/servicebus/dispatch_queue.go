package servicebus

import (
	"context"
	"encoding/json"
	"time"

	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// dispatchMessage is the body of a scheduled dispatch message.
type dispatchMessage struct {
	PostID string `json:"post_id"`
}

// messageSender is the subset of *azservicebus.Sender used here.
type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
}

type dispatchQueue struct {
	sender messageSender
}

// NewDispatchQueue schedules post ids on a queue so they are delivered back at
// their publish time.
func NewDispatchQueue(sender messageSender) repository.IDispatchQueue {
	return &dispatchQueue{sender: sender}
}

func (q *dispatchQueue) Enqueue(ctx context.Context, postID string, at time.Time) error {
	body, err := json.Marshal(dispatchMessage{PostID: postID})
	if err != nil {
		return err
	}
	when := at.UTC()
	contentType := "application/json"
	msg := &azservicebus.Message{
		Body:                 body,
		MessageID:            &postID,
		ContentType:          &contentType,
		ScheduledEnqueueTime: &when,
	}
	if err := q.sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("post_id", postID).WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
