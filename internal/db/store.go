package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenroute/backend/internal/models"
)

const eventsSchema = `
CREATE TABLE IF NOT EXISTS lifecycle_events (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	payload     JSONB NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lifecycle_events_entity ON lifecycle_events(entity_id, occurred_at);
`

// EventArchive persists lifecycle events to PostgreSQL for audit and replay.
// The dispatch core does not read from it.
type EventArchive struct {
	Pool *pgxpool.Pool
}

func NewEventArchive(ctx context.Context, databaseURL string) (*EventArchive, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &EventArchive{Pool: pool}, nil
}

func (s *EventArchive) Close() {
	s.Pool.Close()
}

func (s *EventArchive) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *EventArchive) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, eventsSchema)
	return err
}

// WithTx runs fn in a read-committed transaction. It is rolled back when fn
// fails or the commit does not happen.
func (s *EventArchive) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

func (s *EventArchive) Append(ctx context.Context, ev models.LifecycleEvent) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO lifecycle_events (id, name, entity_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.Name, ev.EntityID, payload, ev.OccurredAt)
	return err
}

// BatchWriter is the part of pgx.Tx used by batch appends.
type BatchWriter interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var eventColumns = []string{"id", "name", "entity_id", "payload", "occurred_at"}

// appendBatch COPYs events into a transaction-scoped staging table and moves
// them into lifecycle_events, skipping ids already archived. It returns the
// number of new rows.
func appendBatch(ctx context.Context, tx BatchWriter, events []models.LifecycleEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return 0, fmt.Errorf("marshal event payload: %w", err)
		}
		rows = append(rows, []any{ev.ID, ev.Name, ev.EntityID, payload, ev.OccurredAt})
	}

	if _, err := tx.Exec(ctx, `CREATE TEMP TABLE lifecycle_events_staging (LIKE lifecycle_events) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"lifecycle_events_staging"}, eventColumns, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy events: %w", err)
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO lifecycle_events (id, name, entity_id, payload, occurred_at)
		SELECT DISTINCT ON (id) id, name, entity_id, payload, occurred_at FROM lifecycle_events_staging
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("merge events: %w", err)
	}
	return tag.RowsAffected(), nil
}

type EventQuery struct {
	EntityID string
	Name     string
	Since    time.Time
	Limit    int
}

func (s *EventArchive) List(ctx context.Context, q EventQuery) ([]models.LifecycleEvent, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 100
	}
	query := `SELECT id, name, entity_id, payload, occurred_at FROM lifecycle_events`
	var args []any
	var wheres []string
	if q.EntityID != "" {
		args = append(args, q.EntityID)
		wheres = append(wheres, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if q.Name != "" {
		args = append(args, q.Name)
		wheres = append(wheres, fmt.Sprintf("name = $%d", len(args)))
	}
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		wheres = append(wheres, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY occurred_at ASC, id ASC LIMIT $%d", len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LifecycleEvent
	for rows.Next() {
		var (
			ev      models.LifecycleEvent
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.EntityID, &payload, &ev.OccurredAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Publish satisfies events.Sink.
func (s *EventArchive) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	return s.Append(ctx, ev)
}

// PublishBatch satisfies events.BatchSink. The batch is archived atomically.
func (s *EventArchive) PublishBatch(ctx context.Context, events []models.LifecycleEvent) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := appendBatch(ctx, tx, events)
		return err
	})
}
