package messaging

import (
	"context"

	"github.com/safient/safient-escrow/internal/events"
)

// Publisher defines the interface for publishing transfer events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTransferEvent publishes a transfer lifecycle event
	PublishTransferEvent(ctx context.Context, event events.TransferEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when NATS is not configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishTransferEvent(context.Context, events.TransferEvent) error { return nil }

func (noopPublisher) Close() {}
