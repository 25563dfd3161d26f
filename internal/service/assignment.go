package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/metrics"
	"github.com/greenroute/backend/internal/models"
)

// AssignmentService binds workers to sites. Every mutation runs inside one
// store transaction so the site status and the worker's active set change
// together or not at all.
type AssignmentService struct {
	Store  *db.MemStore
	Events events.Emitter
	Logger zerolog.Logger
	Now    func() time.Time
	NewID  func() string
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, workerID, siteID string) (models.Assignment, error) {
	var created models.Assignment
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		worker, ok := tx.Worker(workerID)
		if !ok {
			return apperr.NotFound("worker", workerID)
		}
		if !worker.Active {
			return apperr.Validation(fmt.Sprintf("worker %s is inactive", workerID))
		}
		site, ok := tx.Site(siteID)
		if !ok {
			return apperr.NotFound("site", siteID)
		}
		if site.Status != models.SiteOpen || len(tx.LiveAssignmentsForSite(siteID)) > 0 {
			return apperr.ConflictingAssignment(siteID, string(site.Status))
		}

		now := s.now()
		created = models.Assignment{
			ID:        s.newID(),
			WorkerID:  workerID,
			SiteID:    siteID,
			Status:    models.AssignmentScheduled,
			CreatedAt: now,
			UpdatedAt: now,
		}
		worker.ActiveAssignments = append(worker.ActiveAssignments, created.ID)
		worker.UpdatedAt = now
		site.Status = models.SiteAssigned

		tx.PutAssignment(created)
		tx.PutWorker(worker)
		tx.PutSite(site)
		return nil
	})
	if err != nil {
		return models.Assignment{}, err
	}

	metrics.AssignmentsChanged.WithLabelValues(string(created.Status)).Inc()
	s.Logger.Info().Str("assignment_id", created.ID).Str("worker_id", workerID).Str("site_id", siteID).Msg("assignment created")
	s.Events.Emit(ctx, events.AssignmentCreated, created.ID, map[string]any{
		"worker_id": workerID,
		"site_id":   siteID,
		"status":    created.Status,
	})
	return created, nil
}

// StartAssignment moves a scheduled assignment to active. The site stays
// assigned while the assignment is live.
func (s *AssignmentService) StartAssignment(ctx context.Context, assignmentID string) (models.Assignment, error) {
	return s.transition(ctx, assignmentID, "start", models.AssignmentActive)
}

// CompleteAssignment closes the assignment and marks the site completed.
func (s *AssignmentService) CompleteAssignment(ctx context.Context, assignmentID string) (models.Assignment, error) {
	return s.transition(ctx, assignmentID, "complete", models.AssignmentCompleted)
}

// CancelAssignment releases the worker and reopens the site.
func (s *AssignmentService) CancelAssignment(ctx context.Context, assignmentID string) (models.Assignment, error) {
	return s.transition(ctx, assignmentID, "cancel", models.AssignmentCancelled)
}

func (s *AssignmentService) transition(ctx context.Context, assignmentID, action string, to models.AssignmentStatus) (models.Assignment, error) {
	var (
		updated models.Assignment
		from    models.AssignmentStatus
	)
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		a, ok := tx.Assignment(assignmentID)
		if !ok {
			return apperr.NotFound("assignment", assignmentID)
		}
		from = a.Status
		if !assignmentTransitionAllowed(from, to) {
			return apperr.New(apperr.CodeInvalidTransition, fmt.Sprintf("cannot %s assignment in status %s", action, from), map[string]any{
				"assignment_id": assignmentID,
				"from":          from,
				"event":         action,
			})
		}

		now := s.now()
		a.Status = to
		a.UpdatedAt = now
		tx.PutAssignment(a)

		if to.Live() {
			updated = a
			return nil
		}

		if worker, ok := tx.Worker(a.WorkerID); ok {
			worker.ActiveAssignments = removeID(worker.ActiveAssignments, a.ID)
			worker.UpdatedAt = now
			tx.PutWorker(worker)
		}
		if site, ok := tx.Site(a.SiteID); ok {
			if to == models.AssignmentCompleted {
				site.Status = models.SiteCompleted
			} else {
				site.Status = models.SiteOpen
			}
			tx.PutSite(site)
		}
		updated = a
		return nil
	})
	if err != nil {
		return models.Assignment{}, err
	}

	metrics.AssignmentsChanged.WithLabelValues(string(to)).Inc()
	s.Logger.Info().Str("assignment_id", assignmentID).Str("from", string(from)).Str("to", string(to)).Msg("assignment updated")
	s.Events.Emit(ctx, events.AssignmentUpdated, assignmentID, map[string]any{
		"worker_id": updated.WorkerID,
		"site_id":   updated.SiteID,
		"from":      from,
		"to":        to,
	})
	return updated, nil
}

// DeactivateWorker removes a worker from future rankings. Live assignments
// are left untouched; workers are never deleted.
func (s *AssignmentService) DeactivateWorker(ctx context.Context, workerID string) (models.Worker, error) {
	var out models.Worker
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		w, ok := tx.Worker(workerID)
		if !ok {
			return apperr.NotFound("worker", workerID)
		}
		w.Active = false
		w.UpdatedAt = s.now()
		tx.PutWorker(w)
		out = w
		return nil
	})
	if err != nil {
		return models.Worker{}, err
	}
	s.Events.Emit(ctx, events.WorkerUpdated, workerID, map[string]any{"active": false})
	return out, nil
}

func assignmentTransitionAllowed(from, to models.AssignmentStatus) bool {
	switch to {
	case models.AssignmentActive:
		return from == models.AssignmentScheduled
	case models.AssignmentCompleted:
		return from == models.AssignmentActive
	case models.AssignmentCancelled:
		return from.Live()
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *AssignmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *AssignmentService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
