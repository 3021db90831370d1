// Pool bounds worker concurrency with a buffered-channel semaphore and
// requeues with exponential backoff on pool-full, grounded on the
// teacher's internal/judge/service/judge_service.go (acquireSlot/
// releaseSlot) and pool_retry.go (ComputePoolBackoff/RequeueForPoolFull).
package worker

import (
	"context"
	"strconv"
	"time"

	"judgecore/internal/broker/mq"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"

	"go.uber.org/zap"
)

const poolRetryHeader = "x-pool-retry"

// Pool is a bounded worker-slot semaphore.
type Pool struct {
	sem         chan struct{}
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
}

// NewPool builds a Pool with size concurrent slots. size<=0 is treated
// as 1.
func NewPool(size int, maxRetries int, backoffBase, backoffMax time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size), maxRetries: maxRetries, backoffBase: backoffBase, backoffMax: backoffMax}
}

// TryAcquire attempts a non-blocking slot acquisition.
func (p *Pool) TryAcquire() bool {
	select {
	case p.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	select {
	case <-p.sem:
	default:
	}
}

// retryCount reads the pool-retry header, defaulting to 0.
func retryCount(headers map[string]string) int {
	if headers == nil {
		return 0
	}
	raw, ok := headers[poolRetryHeader]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// computeBackoff doubles backoffBase per retry, capped at backoffMax.
func (p *Pool) computeBackoff(n int) time.Duration {
	if p.backoffBase <= 0 {
		return 0
	}
	delay := p.backoffBase
	for i := 0; i < n; i++ {
		if p.backoffMax > 0 && delay >= p.backoffMax {
			return p.backoffMax
		}
		delay *= 2
	}
	if p.backoffMax > 0 && delay > p.backoffMax {
		return p.backoffMax
	}
	return delay
}

// requeue republishes msg onto queue after an exponential backoff,
// bumping its retry header, capped at maxRetries — beyond that, nothing
// is republished and JudgeQueueFull is returned. Worker.handle passes
// that error back to the consumer, which nacks the delivery for
// redelivery.
func (p *Pool) requeue(ctx context.Context, producer mq.Producer, queue string, msg mq.Message) error {
	n := retryCount(msg.Headers)
	if p.maxRetries > 0 && n >= p.maxRetries {
		return errors.New(errors.JudgeQueueFull)
	}
	delay := p.computeBackoff(n)
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	headers := make(map[string]string, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[poolRetryHeader] = strconv.Itoa(n + 1)
	logger.Info(ctx, "worker pool requeue", zap.Int("retry_count", n+1), zap.Duration("delay", delay), zap.String("queue", queue))
	return producer.Publish(ctx, queue, mq.Message{Body: msg.Body, Headers: headers})
}
