package pubsub

import (
	"context"
	"errors"
	"sync"

	"socialflow/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Pub/Sub client for projectID.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID)
}

// IPublisher publishes a payload to a named topic and returns the server id.
type IPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte, attrs map[string]string) (string, error)
}

type Publisher struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewPublisher(client *pubsub.Client) *Publisher {
	return &Publisher{client: client, topics: map[string]*pubsub.Topic{}}
}

func (p *Publisher) Publish(ctx context.Context, topicName string, payload []byte, attrs map[string]string) (string, error) {
	topic, err := p.topic(ctx, topicName)
	if err != nil {
		return "", err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs}).Get(ctx)
	if err != nil {
		return "", err
	}
	logger.GetLogger().WithField("topic", topicName).WithField("server_id", serverID).Debug("Message published")
	return serverID, nil
}

// topic returns a cached handle, creating the topic when it does not exist yet.
func (p *Publisher) topic(ctx context.Context, name string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[name]; ok {
		return t, nil
	}
	t := p.client.Topic(name)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", name).Info("Topic doesn't exist - creating it")
		if t, err = p.client.CreateTopic(ctx, name); err != nil {
			return nil, err
		}
	}
	p.topics[name] = t
	return t, nil
}

// Stop flushes and stops every cached topic.
func (p *Publisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		t.Stop()
	}
}
