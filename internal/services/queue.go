package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// JobHandler processes one message taken from a queue.
type JobHandler func(ctx context.Context, data []byte) error

// Queue moves job payloads from publishers to a pool of consumers.
type Queue interface {
	Publish(ctx context.Context, data []byte) error
	StartConsuming(ctx context.Context, workers int, handler JobHandler) error
	// Stop ends consumption and waits for running handlers to return.
	// Handlers are not cancelled by Stop. Jobs published before Stop are
	// not lost.
	Stop(ctx context.Context) error
}

var ErrQueueStopped = errors.New("queue stopped")

const publishTimeout = 2 * time.Second

// MemoryQueue is a buffered channel shared by in-process workers.
type MemoryQueue struct {
	jobs    chan []byte
	log     *zap.Logger
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewMemoryQueue(size int, log *zap.Logger) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan []byte, size), log: log}
}

func (q *MemoryQueue) Publish(ctx context.Context, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return errors.New("timeout publishing to memory queue")
	}
}

func (q *MemoryQueue) StartConsuming(ctx context.Context, workers int, handler JobHandler) error {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for data := range q.jobs {
				if err := handler(ctx, data); err != nil {
					q.log.Warn("job failed", zap.Int("worker", id), zap.Error(err))
				}
			}
		}(i)
	}
	return nil
}

// Stop refuses new jobs; workers finish everything already buffered before
// they exit.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.jobs)
	}
	q.mu.Unlock()
	return waitGroup(ctx, &q.wg)
}

// RedisQueue is a Redis list. Producers LPUSH; workers BLMOVE each job into a
// processing list and remove it once the handler has returned, so jobs taken
// by a process that died are put back by the next StartConsuming.
type RedisQueue struct {
	client *redis.Client
	key    string
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisQueue(client *redis.Client, key string, log *zap.Logger) *RedisQueue {
	return &RedisQueue{client: client, key: key, log: log}
}

func (q *RedisQueue) processingKey() string {
	return q.key + ":processing"
}

func (q *RedisQueue) Publish(ctx context.Context, data []byte) error {
	return q.client.LPush(ctx, q.key, data).Err()
}

// requeueUnacked moves unacknowledged jobs back to the consuming end of the queue.
func (q *RedisQueue) requeueUnacked(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processingKey(), q.key, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("requeue %s: %w", q.processingKey(), err)
		}
		n++
	}
}

func (q *RedisQueue) StartConsuming(ctx context.Context, workers int, handler JobHandler) error {
	n, err := q.requeueUnacked(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		q.log.Info("requeued unacknowledged jobs", zap.String("queue", q.key), zap.Int("count", n))
	}

	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for ctx.Err() == nil {
				data, err := q.client.BLMove(ctx, q.key, q.processingKey(), "RIGHT", "LEFT", time.Second).Result()
				switch {
				case errors.Is(err, redis.Nil):
					continue
				case err != nil:
					if ctx.Err() != nil {
						return
					}
					q.log.Warn("queue pop failed", zap.String("queue", q.key), zap.Error(err))
					select {
					case <-time.After(time.Second):
					case <-ctx.Done():
						return
					}
					continue
				}

				jobCtx := context.WithoutCancel(ctx)
				// Handler errors are final: the handler does its own retries.
				if err := handler(jobCtx, []byte(data)); err != nil {
					q.log.Warn("job failed", zap.Int("worker", id), zap.Error(err))
				}
				if err := q.client.LRem(jobCtx, q.processingKey(), 1, data).Err(); err != nil {
					q.log.Warn("ack job failed", zap.String("queue", q.key), zap.Error(err))
				}
			}
		}(i)
	}
	return nil
}

func (q *RedisQueue) Stop(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}
	return waitGroup(ctx, &q.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
