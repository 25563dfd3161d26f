package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/greenroute/backend/internal/models"
)

func TestEventArchiveIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	archive, err := NewEventArchive(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer archive.Close()

	if err := archive.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	entityID := "ticket-" + uuid.NewString()
	ev := models.LifecycleEvent{
		ID:         uuid.NewString(),
		Name:       "ticket.created",
		EntityID:   entityID,
		Payload:    map[string]any{"status": "open"},
		OccurredAt: time.Now().UTC(),
	}
	if err := archive.Publish(ctx, ev); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Re-publishing the same id is a no-op.
	if err := archive.Publish(ctx, ev); err != nil {
		t.Fatalf("append duplicate: %v", err)
	}

	next := ev
	next.ID = uuid.NewString()
	next.Name = "ticket.transitioned"
	next.OccurredAt = ev.OccurredAt.Add(time.Second)
	if err := archive.PublishBatch(ctx, []models.LifecycleEvent{ev, next}); err != nil {
		t.Fatalf("append batch: %v", err)
	}

	got, err := archive.List(ctx, EventQuery{EntityID: entityID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Payload["status"] != "open" {
		t.Fatalf("unexpected payload: %+v", got[0].Payload)
	}
}

type recordedCopy struct {
	table   pgx.Identifier
	columns []string
	rows    int
}

type fakeBatchWriter struct {
	stmts   []string
	copies  []recordedCopy
	copyErr error
}

func (f *fakeBatchWriter) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.stmts = append(f.stmts, strings.TrimSpace(sql))
	if strings.Contains(sql, "INSERT INTO lifecycle_events") {
		return pgconn.NewCommandTag("INSERT 0 2"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeBatchWriter) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	n := 0
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return 0, err
		}
		n++
	}
	f.copies = append(f.copies, recordedCopy{table: table, columns: columns, rows: n})
	return int64(n), nil
}

func TestAppendBatchStagesThenMerges(t *testing.T) {
	w := &fakeBatchWriter{}
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	events := []models.LifecycleEvent{
		{ID: "e1", Name: "ticket.created", EntityID: "t1", Payload: map[string]any{"status": "open"}, OccurredAt: now},
		{ID: "e2", Name: "ticket.transitioned", EntityID: "t1", OccurredAt: now.Add(time.Second)},
		{ID: "e1", Name: "ticket.created", EntityID: "t1", OccurredAt: now},
	}

	n, err := appendBatch(context.Background(), w, events)
	if err != nil {
		t.Fatalf("append batch: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 new rows, got %d", n)
	}
	if len(w.stmts) != 2 || !strings.HasPrefix(w.stmts[0], "CREATE TEMP TABLE lifecycle_events_staging") {
		t.Fatalf("unexpected statements: %v", w.stmts)
	}
	if !strings.Contains(w.stmts[1], "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("merge must skip archived ids: %s", w.stmts[1])
	}
	if len(w.copies) != 1 || w.copies[0].rows != 3 || w.copies[0].table[0] != "lifecycle_events_staging" {
		t.Fatalf("unexpected copy: %+v", w.copies)
	}
}

func TestAppendBatchEmptyAndErrors(t *testing.T) {
	w := &fakeBatchWriter{}
	n, err := appendBatch(context.Background(), w, nil)
	if err != nil || n != 0 || len(w.stmts) != 0 {
		t.Fatalf("empty batch should be a no-op: n=%d err=%v stmts=%v", n, err, w.stmts)
	}

	boom := errors.New("copy failed")
	w = &fakeBatchWriter{copyErr: boom}
	_, err = appendBatch(context.Background(), w, []models.LifecycleEvent{{ID: "e1"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected copy error, got %v", err)
	}
	for _, stmt := range w.stmts {
		if strings.Contains(stmt, "INSERT INTO") {
			t.Fatalf("merge ran after failed copy")
		}
	}
}
