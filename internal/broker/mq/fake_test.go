package mq

import (
	"context"
	"testing"
	"time"
)

func TestFakePublishThenGetOne(t *testing.T) {
	f := NewFake()
	if err := f.Publish(context.Background(), "q", Message{Body: []byte("hi")}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	msg, ok, err := f.GetOne(context.Background(), "q")
	if err != nil || !ok {
		t.Fatalf("GetOne: ok=%v err=%v", ok, err)
	}
	if string(msg.Body) != "hi" {
		t.Fatalf("got %q", msg.Body)
	}
	if _, ok, _ := f.GetOne(context.Background(), "q"); ok {
		t.Fatal("queue should be empty after one GetOne")
	}
}

func TestFakeConsumeDeliversInOrder(t *testing.T) {
	f := NewFake()
	_ = f.Publish(context.Background(), "q", Message{Body: []byte("1")})
	_ = f.Publish(context.Background(), "q", Message{Body: []byte("2")})

	var got []string
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = f.Consume(ctx, "q", func(ctx context.Context, msg Message) error {
		got = append(got, string(msg.Body))
		return nil
	})

	if len(got) < 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected [1 2] prefix, got %v", got)
	}
}
