// Dispatcher implements the in-process correlation_id -> notifier pattern
// spec.md 9 recommends in place of literal shared-channel polling: a
// single background consumer drains the response queue and routes each
// response to whichever caller registered that correlation id; unmatched
// responses (the caller already gave up) are dropped, with the queue's
// own message TTL acting as the GC backstop for anything never consumed
// at all.
package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"judgecore/internal/broker/mq"
	"judgecore/internal/judgemodel"
	"judgecore/pkg/utils/logger"
)

// Dispatcher owns the response-queue consumer and the map of pending
// correlation ids.
type Dispatcher struct {
	broker mq.Consumer
	queue  string

	mu      sync.Mutex
	waiters map[string]chan judgemodel.Response
}

// NewDispatcher builds a Dispatcher over broker's response queue. Call
// Run in a goroutine to start draining it.
func NewDispatcher(broker mq.Consumer, responseQueue string) *Dispatcher {
	return &Dispatcher{
		broker:  broker,
		queue:   responseQueue,
		waiters: make(map[string]chan judgemodel.Response),
	}
}

// Run drains the response queue until ctx is canceled. Intended to run in
// its own goroutine for the lifetime of the gateway process.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.broker.Consume(ctx, d.queue, func(ctx context.Context, msg mq.Message) error {
		var resp judgemodel.Response
		if err := json.Unmarshal(msg.Body, &resp); err != nil {
			logger.Warnf(ctx, "dispatcher: malformed response body: %v", err)
			return nil
		}
		d.route(resp)
		return nil
	})
}

// Register allocates a notifier channel for correlationID. The caller
// must eventually call Forget (defer) to avoid leaking the map entry if
// no response ever arrives.
func (d *Dispatcher) Register(correlationID string) chan judgemodel.Response {
	ch := make(chan judgemodel.Response, 1)
	d.mu.Lock()
	d.waiters[correlationID] = ch
	d.mu.Unlock()
	return ch
}

// Forget removes correlationID's waiter entry, e.g. after a timeout.
func (d *Dispatcher) Forget(correlationID string) {
	d.mu.Lock()
	delete(d.waiters, correlationID)
	d.mu.Unlock()
}

func (d *Dispatcher) route(resp judgemodel.Response) {
	d.mu.Lock()
	ch, ok := d.waiters[resp.CorrelationID]
	if ok {
		delete(d.waiters, resp.CorrelationID)
	}
	d.mu.Unlock()

	if !ok {
		return // unmatched response: caller already gave up, TTL will purge it
	}
	select {
	case ch <- resp:
	default:
	}
}
