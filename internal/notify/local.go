package notify

import (
	"context"
	"sync"

	"github.com/maruko-pickup/api/internal/metrics"
)

// LocalQueue delivers messages with in-process worker goroutines. Enqueue
// never blocks: a full buffer is reported as ErrQueueFull.
type LocalQueue struct {
	sender  Sender
	policy  RetryPolicy
	metrics *metrics.Metrics

	jobs chan Message
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewLocalQueue creates a queue with the given buffer size. Call Start to
// begin delivering.
func NewLocalQueue(sender Sender, buffer int, policy RetryPolicy, m *metrics.Metrics) *LocalQueue {
	if buffer < 1 {
		buffer = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalQueue{
		sender:  sender,
		policy:  policy.withDefaults(),
		metrics: m,
		jobs:    make(chan Message, buffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches n workers.
func (q *LocalQueue) Start(n int) {
	if n < 1 {
		n = 1
	}
	for range n {
		q.wg.Add(1)
		go q.work()
	}
}

func (q *LocalQueue) work() {
	defer q.wg.Done()
	for msg := range q.jobs {
		_ = deliver(q.ctx, q.sender, msg, q.policy, q.metrics)
	}
}

// Enqueue implements Queue.
func (q *LocalQueue) Enqueue(_ context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to drain. If ctx
// expires first, pending retries are abandoned and ctx.Err is returned.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}
