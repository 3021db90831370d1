package mq

import (
	"context"
	"sync"
	"time"
)

// Fake is an in-memory MessageQueue used by gateway/worker tests, in the
// style of the teacher's tests/helpers.go fakes.
type Fake struct {
	mu     sync.Mutex
	queues map[string][]Message
}

// NewFake returns an empty in-memory broker.
func NewFake() *Fake {
	return &Fake{queues: make(map[string][]Message)}
}

func (f *Fake) DeclareQueue(name string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queues[name]; !ok {
		f.queues[name] = nil
	}
	return nil
}

func (f *Fake) Publish(ctx context.Context, queue string, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[queue] = append(f.queues[queue], msg)
	return nil
}

// GetOne pops the oldest message on queue, or ok=false if empty.
func (f *Fake) GetOne(ctx context.Context, queue string) (Message, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queues[queue]
	if len(q) == 0 {
		return Message{}, false, nil
	}
	msg := q[0]
	f.queues[queue] = q[1:]
	return msg, true, nil
}

func (f *Fake) Consume(ctx context.Context, queue string, handler HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		msg, ok, _ := f.GetOne(ctx, queue)
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		_ = handler(ctx, msg)
	}
}

func (f *Fake) Stop() error { return nil }

func (f *Fake) Ping(ctx context.Context) error { return nil }

func (f *Fake) Close() error { return nil }
