// Package pubsub implements the alert channel on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
	"github.com/Krause140/eudr-monitor-24-7/internal/notifier/webhook"
)

// Notifier publishes one message per sweep to a Pub/Sub topic.
type Notifier struct {
	client *gcppubsub.Client
	topic  *gcppubsub.Topic
}

// New connects to Pub/Sub. Authentication uses Application Default
// Credentials.
func New(ctx context.Context, projectID, topicID string) (*Notifier, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := gcppubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Notifier{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

// Notify publishes the composed alert text plus the structured change batch
// as a single message. An empty batch is a no-op.
func (n *Notifier) Notify(ctx context.Context, changes []monitor.Change) error {
	if len(changes) == 0 {
		return nil
	}
	data, err := json.Marshal(map[string]any{
		"text":    webhook.ComposeMessage(changes),
		"changes": changes,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	result := n.topic.Publish(ctx, &gcppubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return &monitor.NotificationError{Kind: monitor.NotifyTransport, Err: err}
	}
	return nil
}

// Close releases the Pub/Sub client resources.
func (n *Notifier) Close() error {
	n.topic.Stop()
	if err := n.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
