package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New connects to the project. Topic handles are cached so repeated
// publishes to the same topic share one batching publisher.
func New(projectID string) PubSubClient {
	gcp, err := pubsub.NewClient(context.Background(), projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	return &client{
		client: gcp,
		topics: map[string]*pubsub.Topic{},
	}
}

func (c *client) topic(name string) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.topics[name]
	if !ok {
		t = c.client.Topic(name)
		c.topics[name] = t
	}
	return t
}

// SendMessage publishes the msgpack encoding of data to the topic and waits
// for the server ack.
func (c *client) SendMessage(topic string, data any) error {
	raw, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode message for %s: %w", topic, err)
	}

	ctx := context.Background()
	id, err := c.topic(topic).Publish(ctx, &pubsub.Message{Data: raw}).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Info("Published message", "topic", topic, "id", id)
	return nil
}

// ProcessMessage decodes a received msgpack payload into returnValue.
func (c *client) ProcessMessage(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// Close stops the cached topic publishers and releases the connection.
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.topics {
		t.Stop()
	}
	return c.client.Close()
}
