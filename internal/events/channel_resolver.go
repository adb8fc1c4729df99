package events

import (
	"context"
)

// Publisher delivers an encoded envelope to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ChannelFor routes an envelope to its pub/sub channel.
func ChannelFor(env Envelope) string {
	switch env.AggregateType {
	case AggregateConversation:
		return "channel:conversation:" + env.AggregateID
	default:
		return "channel:system:outbox"
	}
}
