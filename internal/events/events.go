// Package events delivers lifecycle notifications to external listeners.
// Delivery is best-effort: sink failures are logged and counted, never
// returned to the operation that emitted the event.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/metrics"
	"github.com/greenroute/backend/internal/models"
)

const (
	TicketCreated      = "ticket.created"
	TicketTransitioned = "ticket.transitioned"
	InvoiceCreated     = "invoice.created"
	InvoiceUpdated     = "invoice.updated"
	AssignmentCreated  = "assignment.created"
	AssignmentUpdated  = "assignment.updated"
	SiteCreated        = "site.created"
	WorkerUpdated      = "worker.updated"
)

type Sink interface {
	Publish(ctx context.Context, ev models.LifecycleEvent) error
}

// BatchSink is implemented by sinks that can take several events in one
// round trip. The bus prefers it when available.
type BatchSink interface {
	PublishBatch(ctx context.Context, events []models.LifecycleEvent) error
}

// maxBatch caps how many queued events are handed to a sink at once.
const maxBatch = 64

// Emitter is what the dispatch core depends on.
type Emitter interface {
	Emit(ctx context.Context, name, entityID string, payload map[string]any) models.LifecycleEvent
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishBatch hands the batch to sinks that accept batches and publishes
// event by event to the rest.
func (f Fanout) PublishBatch(ctx context.Context, events []models.LifecycleEvent) error {
	var errs []error
	for _, s := range f {
		errs = append(errs, publishBatch(ctx, s, events))
	}
	return errors.Join(errs...)
}

func publishBatch(ctx context.Context, s Sink, events []models.LifecycleEvent) error {
	if bs, ok := s.(BatchSink); ok {
		return bs.PublishBatch(ctx, events)
	}
	var errs []error
	for _, ev := range events {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	Logger zerolog.Logger
}

func (l LogSink) Publish(_ context.Context, ev models.LifecycleEvent) error {
	l.Logger.Info().
		Str("event_id", ev.ID).
		Str("event", ev.Name).
		Str("entity_id", ev.EntityID).
		Interface("payload", ev.Payload).
		Msg("lifecycle event")
	return nil
}

// Bus queues events and delivers them to a sink on a background goroutine.
// When the queue is full the event is dropped and counted.
type Bus struct {
	sink    Sink
	logger  zerolog.Logger
	timeout time.Duration
	now     func() time.Time

	ch        chan models.LifecycleEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewBus(sink Sink, logger zerolog.Logger, buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	b := &Bus{
		sink:    sink,
		logger:  logger,
		timeout: 5 * time.Second,
		now:     func() time.Time { return time.Now().UTC() },
		ch:      make(chan models.LifecycleEvent, buffer),
	}
	b.wg.Add(1)
	go b.loop()
	return b
}

func (b *Bus) Emit(_ context.Context, name, entityID string, payload map[string]any) models.LifecycleEvent {
	ev := models.LifecycleEvent{
		ID:         uuid.NewString(),
		Name:       name,
		EntityID:   entityID,
		Payload:    payload,
		OccurredAt: b.now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		metrics.EventsPublished.WithLabelValues(name, "dropped").Inc()
		b.logger.Warn().Str("event", name).Msg("event bus closed, dropping event")
		return ev
	}
	select {
	case b.ch <- ev:
	default:
		metrics.EventsPublished.WithLabelValues(name, "dropped").Inc()
		b.logger.Warn().Str("event", name).Str("entity_id", entityID).Msg("event queue full, dropping event")
	}
	return ev
}

// Close stops accepting events and waits for queued ones to be delivered.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.ch)
		b.mu.Unlock()
	})
	b.wg.Wait()
}

// loop delivers whatever is queued as one batch, so a burst of events costs
// one round trip on batch-capable sinks.
func (b *Bus) loop() {
	defer b.wg.Done()
	for ev := range b.ch {
		batch := []models.LifecycleEvent{ev}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-b.ch:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		b.deliver(batch)
	}
}

func (b *Bus) deliver(batch []models.LifecycleEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	err := publishBatch(ctx, b.sink, batch)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		b.logger.Error().Err(err).Int("batch", len(batch)).Str("first_event_id", batch[0].ID).Msg("event delivery failed")
	}
	for _, ev := range batch {
		metrics.EventsPublished.WithLabelValues(ev.Name, outcome).Inc()
	}
}
