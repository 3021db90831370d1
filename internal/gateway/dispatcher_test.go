package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"judgecore/internal/broker/mq"
	"judgecore/internal/judgemodel"
)

func TestDispatcherRoutesMatchingCorrelationID(t *testing.T) {
	broker := mq.NewFake()
	d := NewDispatcher(broker, "response_queue")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	ch := d.Register("corr-1")
	body, _ := json.Marshal(judgemodel.Response{CorrelationID: "corr-1", Result: json.RawMessage(`{"status":"success"}`)})
	_ = broker.Publish(context.Background(), "response_queue", mq.Message{Body: body})

	select {
	case resp := <-ch:
		if resp.CorrelationID != "corr-1" {
			t.Fatalf("got wrong correlation id %q", resp.CorrelationID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatched response")
	}
}

func TestDispatcherDropsUnmatchedResponse(t *testing.T) {
	broker := mq.NewFake()
	d := NewDispatcher(broker, "response_queue")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	body, _ := json.Marshal(judgemodel.Response{CorrelationID: "nobody-waiting"})
	_ = broker.Publish(context.Background(), "response_queue", mq.Message{Body: body})

	time.Sleep(20 * time.Millisecond)
	d.mu.Lock()
	n := len(d.waiters)
	d.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no waiters registered, got %d", n)
	}
}

func TestForgetRemovesWaiter(t *testing.T) {
	d := NewDispatcher(mq.NewFake(), "response_queue")
	d.Register("corr-2")
	d.Forget("corr-2")
	d.mu.Lock()
	_, ok := d.waiters["corr-2"]
	d.mu.Unlock()
	if ok {
		t.Fatal("expected waiter to be forgotten")
	}
}
