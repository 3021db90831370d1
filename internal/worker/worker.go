// Package worker consumes code_execution_tasks/code_evaluation_tasks,
// dispatches by task type, and publishes the outcome to response_queue,
// grounded on original_source/.../app/worker.py's process_task and the
// teacher's HandleMessage shape (status save -> work -> status save).
package worker

import (
	"context"
	"encoding/json"
	"time"

	"judgecore/internal/broker/mq"
	"judgecore/internal/judgemodel"
	"judgecore/internal/sandbox/runner"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"

	"go.uber.org/zap"
)

// responseQueueTTL matches spec.md's x-message-ttl=5000 (ms).
const responseQueueTTL = 5 * time.Second

// Config names the queues and work directory a Worker operates on.
type Config struct {
	ExecuteQueue  string
	EvaluateQueue string
	ResponseQueue string
	WorkRoot      string
}

// Worker drains the task queues and publishes Responses.
type Worker struct {
	broker mq.MessageQueue
	runner *runner.Runner
	core   CoreClient
	pool   *Pool
	cfg    Config
}

// New builds a Worker. core may be nil to skip side-effect posting
// (e.g. in tests exercising only the execute path).
func New(broker mq.MessageQueue, run *runner.Runner, core CoreClient, pool *Pool, cfg Config) *Worker {
	return &Worker{broker: broker, runner: run, core: core, pool: pool, cfg: cfg}
}

// Run declares the queues and consumes both task queues until ctx is
// canceled. Blocks; call in its own goroutine per queue or let the
// caller fan out — here both queues are drained concurrently.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.broker.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.BrokerFailure)
	}
	if err := w.broker.DeclareQueue(w.cfg.ExecuteQueue, 0); err != nil {
		return errors.Wrap(err, errors.BrokerFailure)
	}
	if err := w.broker.DeclareQueue(w.cfg.EvaluateQueue, 0); err != nil {
		return errors.Wrap(err, errors.BrokerFailure)
	}
	if err := w.broker.DeclareQueue(w.cfg.ResponseQueue, responseQueueTTL); err != nil {
		return errors.Wrap(err, errors.BrokerFailure)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- w.broker.Consume(ctx, w.cfg.ExecuteQueue, w.handle(w.cfg.ExecuteQueue)) }()
	go func() { errCh <- w.broker.Consume(ctx, w.cfg.EvaluateQueue, w.handle(w.cfg.EvaluateQueue)) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// handle builds the mq.HandlerFunc for queue, gated by the worker pool.
func (w *Worker) handle(queue string) mq.HandlerFunc {
	return func(ctx context.Context, msg mq.Message) error {
		if !w.pool.TryAcquire() {
			return w.pool.requeue(ctx, w.broker, queue, msg)
		}
		defer w.pool.Release()

		w.processTask(ctx, msg.Body)
		return nil
	}
}

// processTask mirrors process_task: missing correlation_id is silently
// dropped, any other failure is turned into an error Response rather
// than propagated, because a task's caller is always waiting on a
// Response with its correlation id.
func (w *Worker) processTask(ctx context.Context, body []byte) {
	var task judgemodel.Task
	if err := json.Unmarshal(body, &task); err != nil {
		logger.Warnf(ctx, "worker: malformed task body: %v", err)
		return
	}
	if task.CorrelationID == "" {
		logger.Warn(ctx, "worker: task missing correlation_id, dropping")
		return
	}

	resp := judgemodel.Response{CorrelationID: task.CorrelationID}
	switch task.Type {
	case judgemodel.TaskExecute:
		result, err := w.runExecute(ctx, task.Payload)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Result, _ = json.Marshal(result)
		}
	case judgemodel.TaskEvaluate:
		result, req, err := w.runEvaluate(ctx, task.Payload)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Result, _ = json.Marshal(result)
			postSideEffects(ctx, w.core, req, result)
		}
	default:
		resp.Error = "unknown task type"
	}

	w.publishResponse(ctx, resp)
}

func (w *Worker) runExecute(ctx context.Context, payload json.RawMessage) (judgemodel.ExecuteResult, error) {
	var req judgemodel.ExecuteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return judgemodel.ExecuteResult{}, errors.Wrap(err, errors.InvalidParams)
	}
	return Execute(ctx, w.runner, w.cfg.WorkRoot, req)
}

func (w *Worker) runEvaluate(ctx context.Context, payload json.RawMessage) (judgemodel.EvaluationResult, judgemodel.EvaluateRequest, error) {
	var req judgemodel.EvaluateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return judgemodel.EvaluationResult{}, req, errors.Wrap(err, errors.InvalidParams)
	}
	result, err := Evaluate(ctx, w.runner, w.cfg.WorkRoot, req)
	return result, req, err
}

func (w *Worker) publishResponse(ctx context.Context, resp judgemodel.Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		logger.Error(ctx, "worker: failed to marshal response", zap.Error(err))
		return
	}
	if err := w.broker.Publish(ctx, w.cfg.ResponseQueue, mq.Message{Body: body}); err != nil {
		logger.Error(ctx, "worker: failed to publish response", zap.Error(err))
	}
}
