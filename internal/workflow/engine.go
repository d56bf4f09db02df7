package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"talent-match/internal/storage"
)

// Handler executes one event type. The returned value is stored as the
// run's output for pollers.
type Handler func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// RunStore is the slice of storage the engine needs to make runs durable.
type RunStore interface {
	CreateRun(ctx context.Context, eventType string, payload interface{}, maxRetries int) (string, error)
	CompleteRun(ctx context.Context, id string, output interface{}) error
	FailRun(ctx context.Context, id string, errMsg string) error
	CancelRun(ctx context.Context, id string) error
	BumpRunRetry(ctx context.Context, id string) error
	IsRunCancelRequested(ctx context.Context, id string) (bool, error)
}

type queuedRun struct {
	runID     string
	eventType string
	payload   json.RawMessage
}

// Engine runs background events on a fixed worker pool. Each dispatch is
// recorded as a workflow run that clients can poll or cancel; failed
// handlers are retried with exponential backoff before the run fails.
type Engine struct {
	store      RunStore
	handlers   map[string]Handler
	queue      chan queuedRun
	maxRetries int
	baseDelay  time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	wg sync.WaitGroup
}

func NewEngine(store RunStore, queueSize, maxRetries int) *Engine {
	if queueSize <= 0 {
		queueSize = 100
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Engine{
		store:      store,
		handlers:   make(map[string]Handler),
		queue:      make(chan queuedRun, queueSize),
		maxRetries: maxRetries,
		baseDelay:  2 * time.Second,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Register binds a handler to an event type. Must be called before Start.
func (e *Engine) Register(eventType string, h Handler) {
	e.handlers[eventType] = h
}

// Start launches the worker pool.
func (e *Engine) Start(workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	log.Printf("[Workflow] Started %d workers", workers)
}

// Stop closes the queue and waits for in-flight runs to finish.
func (e *Engine) Stop() {
	close(e.queue)
	e.wg.Wait()
	log.Println("[Workflow] Workers stopped")
}

// Dispatch records a run and enqueues it, discarding the run id. It
// satisfies the event sinks of packages that fan work out without polling.
func (e *Engine) Dispatch(ctx context.Context, eventType string, payload interface{}) error {
	_, err := e.DispatchRun(ctx, eventType, payload)
	return err
}

// DispatchRun records a run and enqueues it, returning the run id for
// polling. The enqueue is non-blocking: a full queue fails the run
// immediately instead of stalling the caller.
func (e *Engine) DispatchRun(ctx context.Context, eventType string, payload interface{}) (string, error) {
	if _, ok := e.handlers[eventType]; !ok {
		return "", fmt.Errorf("no handler registered for event %q", eventType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	runID, err := e.store.CreateRun(ctx, eventType, payload, e.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	select {
	case e.queue <- queuedRun{runID: runID, eventType: eventType, payload: raw}:
		log.Printf("[Workflow] Queued %s run %s", eventType, runID)
	default:
		log.Printf("[Workflow] Queue full, failing %s run %s", eventType, runID)
		if err := e.store.FailRun(ctx, runID, "queue full"); err != nil {
			log.Printf("[Workflow] Failed to record queue-full failure for run %s: %v", runID, err)
		}
		return runID, fmt.Errorf("workflow queue full")
	}
	return runID, nil
}

// Cancel requests cooperative cancellation of a run. An in-flight run has
// its context cancelled; a queued run is skipped when a worker picks it up.
func (e *Engine) Cancel(ctx context.Context, runID string) error {
	if err := e.store.CancelRun(ctx, runID); err != nil {
		return err
	}
	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

func (e *Engine) worker(id int) {
	defer e.wg.Done()
	log.Printf("[Workflow] Worker %d started", id)

	for run := range e.queue {
		e.execute(run)
	}
}

func (e *Engine) execute(run queuedRun) {
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancels[run.runID] = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		delete(e.cancels, run.runID)
		e.mu.Unlock()
	}()

	handler := e.handlers[run.eventType]
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if cancelled, err := e.store.IsRunCancelRequested(ctx, run.runID); err == nil && cancelled {
			log.Printf("[Workflow] Run %s cancelled before attempt %d", run.runID, attempt+1)
			return
		}

		if attempt > 0 {
			delay := e.baseDelay * time.Duration(1<<(attempt-1))
			log.Printf("[Workflow] Retrying %s run %s in %v (attempt %d/%d)",
				run.eventType, run.runID, delay, attempt+1, e.maxRetries+1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				log.Printf("[Workflow] Run %s cancelled during backoff", run.runID)
				return
			}
			if err := e.store.BumpRunRetry(context.Background(), run.runID); err != nil {
				log.Printf("[Workflow] Failed to bump retry count for run %s: %v", run.runID, err)
			}
		}

		output, err := handler(ctx, run.payload)
		if err == nil {
			if err := e.store.CompleteRun(context.Background(), run.runID, output); err != nil {
				log.Printf("[Workflow] Failed to complete run %s: %v", run.runID, err)
			}
			log.Printf("[Workflow] Completed %s run %s (took %v)", run.eventType, run.runID, time.Since(start))
			return
		}
		if ctx.Err() != nil {
			log.Printf("[Workflow] Run %s cancelled mid-attempt", run.runID)
			return
		}
		lastErr = err
		log.Printf("[Workflow] %s run %s attempt %d failed: %v", run.eventType, run.runID, attempt+1, err)
	}

	if err := e.store.FailRun(context.Background(), run.runID, lastErr.Error()); err != nil {
		log.Printf("[Workflow] Failed to record failure for run %s: %v", run.runID, err)
	}
}

var _ RunStore = (*storage.DB)(nil)
