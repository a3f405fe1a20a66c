package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"
)

const (
	DeliveryModeMock = "mock"
	DeliveryModeLive = "live"
)

// ErrDeliveryUnavailable is returned by SelectDelivery when live hand-off is configured
// but no publisher could be created.
var ErrDeliveryUnavailable = errors.New("live delivery configured but pub/sub is unavailable")

// SelectDelivery picks the delivery for mode. An empty mode means mock. Live mode never
// degrades to the mock, since that would publish posts nothing was handed off for.
func SelectDelivery(mode string, publisher IPublisher, topic string) (repository.IDelivery, error) {
	switch mode {
	case "", DeliveryModeMock:
		return NewMockDelivery(), nil
	case DeliveryModeLive:
		if publisher == nil {
			return nil, ErrDeliveryUnavailable
		}
		return NewDelivery(publisher, topic), nil
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", mode)
	}
}

type delivery struct {
	publisher IPublisher
	topic     string
}

// NewDelivery hands each (post, platform) pair to the delivery workers over Pub/Sub.
// A message accepted by the broker counts as a successful delivery.
func NewDelivery(publisher IPublisher, topic string) repository.IDelivery {
	return &delivery{publisher: publisher, topic: topic}
}

func (d *delivery) Deliver(ctx context.Context, req model.DeliveryRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	id, err := d.publisher.Publish(ctx, d.topic, payload, map[string]string{
		"platform": req.Platform.Slug(),
		"post_id":  req.PostID,
	})
	if err != nil {
		return fmt.Errorf("hand off %s delivery: %w", req.Platform, err)
	}
	logger.GetLogger().WithField("post_id", req.PostID).WithField("platform", req.Platform).WithField("message_id", id).Info("delivery handed off")
	return nil
}

type mockDelivery struct{}

// NewMockDelivery accepts every request locally.
func NewMockDelivery() repository.IDelivery { return mockDelivery{} }

func (mockDelivery) Deliver(_ context.Context, req model.DeliveryRequest) error {
	logger.GetLogger().WithField("post_id", req.PostID).WithField("platform", req.Platform).Info("mock delivery accepted")
	return nil
}
