package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/backend/internal/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
	err    error
}

func (r *recordingSink) Publish(_ context.Context, ev models.LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

func TestBusDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	bus := NewBus(sink, zerolog.Nop(), 16)

	ev := bus.Emit(context.Background(), TicketCreated, "t1", map[string]any{"status": "open"})
	bus.Emit(context.Background(), TicketTransitioned, "t1", nil)
	bus.Close()

	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, []string{TicketCreated, TicketTransitioned}, sink.names())
}

func TestBusSurvivesSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("down")}
	bus := NewBus(sink, zerolog.Nop(), 4)
	bus.Emit(context.Background(), InvoiceCreated, "i1", nil)
	bus.Emit(context.Background(), InvoiceCreated, "i2", nil)
	bus.Close()
	assert.Len(t, sink.names(), 2)
}

func TestBusEmitAfterCloseDrops(t *testing.T) {
	sink := &recordingSink{}
	bus := NewBus(sink, zerolog.Nop(), 4)
	bus.Close()
	bus.Close()
	bus.Emit(context.Background(), InvoiceCreated, "i1", nil)
	assert.Empty(t, sink.names())
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	bad := &recordingSink{err: errors.New("redis down")}
	f := Fanout{ok, bad, LogSink{Logger: zerolog.Nop()}}

	err := f.Publish(context.Background(), models.LifecycleEvent{Name: SiteCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, ok.names(), 1)
	assert.Len(t, bad.names(), 1)
}

type batchingSink struct {
	mu      sync.Mutex
	batches [][]string
	started chan struct{}
	gate    chan struct{}
}

func (b *batchingSink) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	return b.PublishBatch(ctx, []models.LifecycleEvent{ev})
}

func (b *batchingSink) PublishBatch(_ context.Context, events []models.LifecycleEvent) error {
	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.EntityID)
	}
	b.mu.Lock()
	b.batches = append(b.batches, ids)
	first := len(b.batches) == 1
	b.mu.Unlock()
	if first && b.gate != nil {
		close(b.started)
		<-b.gate
	}
	return nil
}

func TestBusBatchesQueuedEvents(t *testing.T) {
	sink := &batchingSink{started: make(chan struct{}), gate: make(chan struct{})}
	bus := NewBus(sink, zerolog.Nop(), 16)
	ctx := context.Background()

	bus.Emit(ctx, TicketCreated, "e1", nil)
	<-sink.started
	for _, id := range []string{"e2", "e3", "e4", "e5"} {
		bus.Emit(ctx, TicketTransitioned, id, nil)
	}
	close(sink.gate)
	bus.Close()

	require.Len(t, sink.batches, 2)
	assert.Equal(t, []string{"e1"}, sink.batches[0])
	assert.Equal(t, []string{"e2", "e3", "e4", "e5"}, sink.batches[1])
}

func TestFanoutPublishBatch(t *testing.T) {
	batched := &batchingSink{}
	single := &recordingSink{}
	f := Fanout{batched, single}

	evs := []models.LifecycleEvent{
		{Name: SiteCreated, EntityID: "s1"},
		{Name: SiteCreated, EntityID: "s2"},
		{Name: WorkerUpdated, EntityID: "w1"},
	}
	require.NoError(t, f.PublishBatch(context.Background(), evs))
	assert.Equal(t, [][]string{{"s1", "s2", "w1"}}, batched.batches)
	assert.Equal(t, []string{SiteCreated, SiteCreated, WorkerUpdated}, single.names())

	failing := Fanout{&recordingSink{err: errors.New("hub closed")}}
	assert.Error(t, failing.PublishBatch(context.Background(), evs))
}
