package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialflow/domain/model"
	"socialflow/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// messageReceiver is the subset of *azservicebus.Receiver used here.
type messageReceiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	AbandonMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.AbandonMessageOptions) error
}

// Dispatcher publishes a due scheduled post.
type Dispatcher interface {
	Dispatch(ctx context.Context, postID string) (*model.Post, error)
}

// DispatchConsumer receives scheduled dispatch messages and hands them to a Dispatcher.
type DispatchConsumer struct {
	receiver   messageReceiver
	dispatcher Dispatcher
	batchSize  int
	backoff    time.Duration
}

func NewDispatchConsumer(receiver messageReceiver, dispatcher Dispatcher) *DispatchConsumer {
	return &DispatchConsumer{receiver: receiver, dispatcher: dispatcher, batchSize: 10, backoff: 5 * time.Second}
}

// Run receives until ctx is cancelled.
func (c *DispatchConsumer) Run(ctx context.Context) error {
	for {
		if err := c.ReceiveOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.GetLogger().WithField("error", err).Warn("service bus receive failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
	}
}

// ReceiveOnce processes one batch. Messages whose dispatch failed are abandoned
// so they are redelivered; undecodable ones are completed and dropped.
func (c *DispatchConsumer) ReceiveOnce(ctx context.Context) error {
	messages, err := c.receiver.ReceiveMessages(ctx, c.batchSize, nil)
	if err != nil {
		return err
	}
	for _, m := range messages {
		lg := logger.GetLogger().WithField("message_id", m.MessageID)
		var body dispatchMessage
		if err := json.Unmarshal(m.Body, &body); err != nil || body.PostID == "" {
			lg.WithField("error", err).Warn("dropping malformed dispatch message")
			c.complete(ctx, m)
			continue
		}
		_, err := c.dispatcher.Dispatch(ctx, body.PostID)
		if err != nil && !errors.Is(err, model.ErrPostNotFound) {
			lg.WithField("post_id", body.PostID).WithField("error", err).Error("dispatch failed")
			if aerr := c.receiver.AbandonMessage(ctx, m, nil); aerr != nil {
				lg.WithField("error", aerr).Error("Error while abandoning message.")
			}
			continue
		}
		c.complete(ctx, m)
	}
	return nil
}

func (c *DispatchConsumer) complete(ctx context.Context, m *azservicebus.ReceivedMessage) {
	if err := c.receiver.CompleteMessage(ctx, m, nil); err != nil {
		logger.GetLogger().WithField("message_id", m.MessageID).WithField("error", err).Error("Error while completing message.")
	}
}
