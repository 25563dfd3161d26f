package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/models"
)

type emitted struct {
	Name     string
	EntityID string
	Payload  map[string]any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) Emit(_ context.Context, name, entityID string, payload map[string]any) models.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{Name: name, EntityID: entityID, Payload: payload})
	return models.LifecycleEvent{Name: name, EntityID: entityID, Payload: payload}
}

func (r *recordingEmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

var fixedNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func seedStore(t *testing.T, workers []models.Worker, sites []models.Site, customers []models.Customer) *db.MemStore {
	t.Helper()
	s := db.NewMemStore()
	err := s.WithTx(context.Background(), func(tx *db.Tx) error {
		for _, w := range workers {
			tx.PutWorker(w)
		}
		for _, site := range sites {
			tx.PutSite(site)
		}
		for _, c := range customers {
			tx.PutCustomer(c)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
