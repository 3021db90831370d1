package worker

import (
	"context"
	"testing"
	"time"

	"judgecore/internal/broker/mq"
)

func TestPoolTryAcquireRespectsSize(t *testing.T) {
	p := NewPool(1, 5, time.Millisecond, time.Millisecond)
	if !p.TryAcquire() {
		t.Fatal("expected first acquire to succeed")
	}
	if p.TryAcquire() {
		t.Fatal("expected second acquire to fail when pool size is 1")
	}
	p.Release()
	if !p.TryAcquire() {
		t.Fatal("expected acquire to succeed after release")
	}
}

func TestPoolRequeueBumpsRetryHeaderAndPublishes(t *testing.T) {
	p := NewPool(1, 5, time.Millisecond, 10*time.Millisecond)
	broker := mq.NewFake()

	err := p.requeue(context.Background(), broker, "q", mq.Message{Body: []byte("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, ok, _ := broker.GetOne(context.Background(), "q")
	if !ok {
		t.Fatal("expected requeued message")
	}
	if msg.Headers[poolRetryHeader] != "1" {
		t.Fatalf("expected retry header 1, got %q", msg.Headers[poolRetryHeader])
	}
}

func TestPoolRequeueGivesUpAfterMaxRetries(t *testing.T) {
	p := NewPool(1, 2, time.Millisecond, time.Millisecond)
	broker := mq.NewFake()

	msg := mq.Message{Body: []byte("x"), Headers: map[string]string{poolRetryHeader: "2"}}
	if err := p.requeue(context.Background(), broker, "q", msg); err == nil {
		t.Fatal("expected error once max retries reached")
	}
}
