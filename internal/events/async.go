package events

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/platform/logger"
)

// Common errors returned by the AsyncEmitter
var (
	ErrQueueClosed = errors.New("event queue is closed")
	ErrQueueFull   = errors.New("event queue is full")
)

// AsyncConfig holds configuration for the AsyncEmitter.
type AsyncConfig struct {
	// WorkerCount determines how many concurrent workers deliver events.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize is the buffer size of each worker's queue.
	// If zero or negative, defaults to 1.
	QueueSize int
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{WorkerCount: 2, QueueSize: 256}
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// AsyncEmitter queues events and delivers them to next from a pool of
// background workers. Each recipient is pinned to one worker, so events for
// the same recipient are delivered in the order they were emitted. Emit never
// blocks: when a queue is full the event is dropped and ErrQueueFull is returned.
type AsyncEmitter struct {
	next        Emitter
	queues      []chan queuedEvent
	workerCount int
	wg          sync.WaitGroup
	mu          sync.RWMutex
	closed      bool
	started     bool
	logger      *slog.Logger
}

// NewAsyncEmitter creates an AsyncEmitter that forwards to next.
// Workers do not run until Start is called.
func NewAsyncEmitter(next Emitter, cfg AsyncConfig, log *slog.Logger) *AsyncEmitter {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "async_event_emitter"))

	if cfg.WorkerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", cfg.WorkerCount),
			slog.Int("default_count", 1))
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}

	queues := make([]chan queuedEvent, cfg.WorkerCount)
	for i := range queues {
		queues[i] = make(chan queuedEvent, cfg.QueueSize)
	}

	return &AsyncEmitter{
		next:        next,
		queues:      queues,
		workerCount: cfg.WorkerCount,
		logger:      log,
	}
}

// Start launches the worker goroutines. Calling it more than once has no effect.
func (e *AsyncEmitter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true

	for i := range e.queues {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Info("event workers started", slog.Int("worker_count", e.workerCount))
}

// Emit enqueues the events. Request cancellation does not affect queued
// events; the context's values (logger, trace ID) travel with them.
func (e *AsyncEmitter) Emit(ctx context.Context, events ...Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrQueueClosed
	}

	log := logger.FromContextOrDefault(ctx, e.logger)
	detached := context.WithoutCancel(ctx)

	var errs []error
	for _, event := range events {
		queue := e.queues[e.shard(event.Recipient)]
		select {
		case queue <- queuedEvent{ctx: detached, event: event}:
			log.Debug("event enqueued",
				slog.String("event_id", event.ID.String()),
				slog.Int("queue_len", len(queue)))
		default:
			log.Warn("event queue full, dropping event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", string(event.Type)),
				slog.String("recipient", event.Recipient.String()))
			errs = append(errs, fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(queue)))
		}
	}
	return errors.Join(errs...)
}

// Stop closes the queues and waits for the workers to drain them, or for ctx
// to expire. Events still queued when ctx expires are abandoned.
func (e *AsyncEmitter) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		for _, q := range e.queues {
			close(q)
		}
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("event workers stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("timed out waiting for event workers",
			slog.Int("pending", e.pending()))
		return ctx.Err()
	}
}

// shard picks the worker queue for recipient.
func (e *AsyncEmitter) shard(recipient uuid.UUID) int {
	if len(e.queues) == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write(recipient[:])
	return int(h.Sum32() % uint32(len(e.queues)))
}

func (e *AsyncEmitter) pending() int {
	n := 0
	for _, q := range e.queues {
		n += len(q)
	}
	return n
}

func (e *AsyncEmitter) worker(id int) {
	defer e.wg.Done()

	e.logger.Debug("starting worker", slog.Int("worker_id", id))
	for item := range e.queues[id] {
		e.deliver(item, id)
	}
	e.logger.Debug("event queue closed, stopping worker", slog.Int("worker_id", id))
}

func (e *AsyncEmitter) deliver(item queuedEvent, workerID int) {
	log := logger.FromContextOrDefault(item.ctx, e.logger)

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while delivering event",
				slog.Any("panic", p),
				slog.Int("worker_id", workerID),
				slog.String("event_id", item.event.ID.String()))
		}
	}()

	if err := e.next.Emit(item.ctx, item.event); err != nil {
		log.Error("event delivery failed",
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.String("event_id", item.event.ID.String()))
	}
}
