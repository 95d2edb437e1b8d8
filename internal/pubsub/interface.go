package pubsub

import "context"

type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close()
}

// Handler receives the encoded payload of a message delivered inline.
type Handler func(ctx context.Context, data []byte) error
