// Package mq defines the broker abstraction used by the judge pipeline
// (C3): durable FIFO queues for tasks and a TTL'd response queue,
// generalized from the teacher's MessageQueue/Producer/Consumer interface
// shape (internal/common/mq/interface.go) to the narrower surface this
// spec needs.
package mq

import (
	"context"
	"time"
)

// Message is a single broker message: a JSON body plus delivery metadata.
type Message struct {
	Body    []byte
	Headers map[string]string
}

// HandlerFunc processes one delivered message. Returning nil acks the
// message; returning an error nacks it so the broker may redeliver.
type HandlerFunc func(ctx context.Context, msg Message) error

// Producer publishes messages to named queues.
type Producer interface {
	Publish(ctx context.Context, queue string, msg Message) error
}

// Consumer subscribes to a named queue with a handler, run until the
// context is canceled or Stop is called.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler HandlerFunc) error
	Stop() error
}

// MessageQueue is the full broker surface: publish, consume, declare,
// liveness check, and teardown.
type MessageQueue interface {
	Producer
	Consumer

	// DeclareQueue declares a durable queue, optionally with a
	// per-message TTL (0 disables TTL).
	DeclareQueue(name string, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}
