package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"judgecore/internal/broker/mq"
	"judgecore/internal/judgemodel"
	"judgecore/internal/sandbox/runner"
	"judgecore/pkg/errors"
)

func newTestWorker(t *testing.T, broker mq.MessageQueue, run *runner.Runner) *Worker {
	t.Helper()
	cfg := Config{
		ExecuteQueue:  "code_execution_tasks",
		EvaluateQueue: "code_evaluation_tasks",
		ResponseQueue: "response_queue",
		WorkRoot:      t.TempDir(),
	}
	pool := NewPool(4, 5, time.Millisecond, time.Millisecond)
	return New(broker, run, nil, pool, cfg)
}

func TestWorkerProcessesExecuteTaskAndPublishesResponse(t *testing.T) {
	broker := mq.NewFake()
	run := runner.New(&fakeEngine{exitCode: 0, onRun: writeOutputAndTime("7\n", "0.01")})
	w := newTestWorker(t, broker, run)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	defer cancel()

	task := judgemodel.Task{
		Type:          judgemodel.TaskExecute,
		CorrelationID: "corr-1",
	}
	payload, _ := json.Marshal(judgemodel.ExecuteRequest{ProcessorID: "python3", Code: "print(7)"})
	task.Payload = payload
	body, _ := json.Marshal(task)
	_ = broker.Publish(context.Background(), "code_execution_tasks", mq.Message{Body: body})

	deadline := time.After(2 * time.Second)
	for {
		msg, ok, _ := broker.GetOne(context.Background(), "response_queue")
		if ok {
			var resp judgemodel.Response
			if err := json.Unmarshal(msg.Body, &resp); err != nil {
				t.Fatalf("malformed response: %v", err)
			}
			if resp.CorrelationID != "corr-1" {
				t.Fatalf("wrong correlation id %q", resp.CorrelationID)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for response")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorkerDropsTaskMissingCorrelationID(t *testing.T) {
	broker := mq.NewFake()
	run := runner.New(&fakeEngine{exitCode: 0})
	w := newTestWorker(t, broker, run)

	body, _ := json.Marshal(judgemodel.Task{Type: judgemodel.TaskExecute})
	w.processTask(context.Background(), body)

	_, ok, _ := broker.GetOne(context.Background(), "response_queue")
	if ok {
		t.Fatal("expected no response to be published for a task missing correlation_id")
	}
}

func TestWorkerUnknownTaskTypeReturnsErrorResponse(t *testing.T) {
	broker := mq.NewFake()
	run := runner.New(&fakeEngine{exitCode: 0})
	w := newTestWorker(t, broker, run)

	body, _ := json.Marshal(judgemodel.Task{Type: "bogus", CorrelationID: "corr-2"})
	w.processTask(context.Background(), body)

	msg, ok, _ := broker.GetOne(context.Background(), "response_queue")
	if !ok {
		t.Fatal("expected an error response to be published")
	}
	var resp judgemodel.Response
	_ = json.Unmarshal(msg.Body, &resp)
	if resp.Error == "" {
		t.Fatal("expected a non-empty error for unknown task type")
	}
}

// pingFailsBroker wraps a Fake but fails the readiness probe, so Run
// must refuse to start consuming rather than declare queues against a
// broker it cannot reach.
type pingFailsBroker struct {
	*mq.Fake
}

func (b pingFailsBroker) Ping(ctx context.Context) error {
	return errors.New(errors.BrokerFailure)
}

func TestWorkerRunFailsFastWhenBrokerUnreachable(t *testing.T) {
	broker := pingFailsBroker{mq.NewFake()}
	run := runner.New(&fakeEngine{exitCode: 0})
	w := newTestWorker(t, broker, run)

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected Run to fail when the broker readiness check fails")
	}
}
