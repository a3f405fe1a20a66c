package pubsub

import (
	"context"
	"encoding/json"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

type postEvents struct {
	publisher IPublisher
	topic     string
}

// NewPostEvents publishes post status changes to topic.
func NewPostEvents(publisher IPublisher, topic string) repository.IPostEvents {
	return &postEvents{publisher: publisher, topic: topic}
}

func (e *postEvents) Publish(ctx context.Context, event model.PostEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = e.publisher.Publish(ctx, e.topic, payload, map[string]string{
		"type":    event.Type,
		"status":  string(event.Status),
		"user_id": event.UserID,
	})
	return err
}
