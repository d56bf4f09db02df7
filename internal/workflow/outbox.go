package workflow

import (
	"context"
	"log"
	"time"

	"talent-match/internal/storage"
)

// OutboxStore is the slice of storage the projector drains.
type OutboxStore interface {
	FetchPendingOutbox(ctx context.Context, limit int) ([]*storage.OutboxEvent, error)
	MarkOutboxDone(ctx context.Context, id string) error
	RecordOutboxFailure(ctx context.Context, id string, errMsg string) error
}

// Projector drains pending outbox events on a fixed interval and routes
// them to their handlers. A failing event has its attempt counter bumped
// and is retried on a later sweep; the rest of the batch keeps moving.
type Projector struct {
	store    OutboxStore
	handlers map[string]Handler
	sweeps   []func(context.Context)
	interval time.Duration
	batch    int
}

func NewProjector(store OutboxStore, interval time.Duration, batch int) *Projector {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	return &Projector{
		store:    store,
		handlers: make(map[string]Handler),
		interval: interval,
		batch:    batch,
	}
}

// Register binds a handler to an outbox event type. Must be called before
// Start.
func (p *Projector) Register(eventType string, h Handler) {
	p.handlers[eventType] = h
}

// RegisterSweep adds a maintenance pass that runs after each drain. Must be
// called before Start.
func (p *Projector) RegisterSweep(fn func(context.Context)) {
	p.sweeps = append(p.sweeps, fn)
}

// Start runs the drain loop until the context is cancelled.
func (p *Projector) Start(ctx context.Context) {
	go func() {
		log.Printf("[Outbox] Projector started (interval %v, batch %d)", p.interval, p.batch)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[Outbox] Projector stopped")
				return
			case <-ticker.C:
				p.drain(ctx)
				p.runSweeps(ctx)
			}
		}
	}()
}

func (p *Projector) runSweeps(ctx context.Context) {
	for _, sweep := range p.sweeps {
		if ctx.Err() != nil {
			return
		}
		sweep(ctx)
	}
}

func (p *Projector) drain(ctx context.Context) {
	events, err := p.store.FetchPendingOutbox(ctx, p.batch)
	if err != nil {
		log.Printf("[Outbox] Failed to fetch pending events: %v", err)
		return
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return
		}

		handler, ok := p.handlers[event.EventType]
		if !ok {
			log.Printf("[Outbox] No handler for event type %q, parking %s", event.EventType, event.ID)
			if err := p.store.RecordOutboxFailure(ctx, event.ID, "no handler registered"); err != nil {
				log.Printf("[Outbox] Failed to record failure for %s: %v", event.ID, err)
			}
			continue
		}

		if _, err := handler(ctx, event.Payload); err != nil {
			log.Printf("[Outbox] Event %s (%s) failed: %v", event.ID, event.EventType, err)
			if err := p.store.RecordOutboxFailure(ctx, event.ID, err.Error()); err != nil {
				log.Printf("[Outbox] Failed to record failure for %s: %v", event.ID, err)
			}
			continue
		}

		if err := p.store.MarkOutboxDone(ctx, event.ID); err != nil {
			log.Printf("[Outbox] Failed to mark %s done: %v", event.ID, err)
		}
	}
}
