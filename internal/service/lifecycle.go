package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/metrics"
	"github.com/greenroute/backend/internal/models"
)

type TicketEvent string

const (
	EventSchedule TicketEvent = "schedule"
	EventStart    TicketEvent = "start"
	EventComplete TicketEvent = "complete"
	EventCancel   TicketEvent = "cancel"
)

var ticketTransitions = map[models.TicketStatus]map[TicketEvent]models.TicketStatus{
	models.TicketOpen: {
		EventSchedule: models.TicketScheduled,
		EventCancel:   models.TicketCancelled,
	},
	models.TicketScheduled: {
		EventStart:  models.TicketInProgress,
		EventCancel: models.TicketCancelled,
	},
	models.TicketInProgress: {
		EventComplete: models.TicketCompleted,
		EventCancel:   models.TicketCancelled,
	},
}

// NextTicketStatus returns the status reached by applying ev to from.
func NextTicketStatus(from models.TicketStatus, ev TicketEvent) (models.TicketStatus, bool) {
	to, ok := ticketTransitions[from][ev]
	return to, ok
}

func ParseTicketEvent(v string) (TicketEvent, bool) {
	switch ev := TicketEvent(strings.ToLower(strings.TrimSpace(v))); ev {
	case EventSchedule, EventStart, EventComplete, EventCancel:
		return ev, true
	}
	return "", false
}

type CustomerDirectory interface {
	FindCustomer(ctx context.Context, id string) (models.Customer, error)
}

type TransitionOptions struct {
	WorkerID    string
	ScheduledAt *time.Time
	ActualCost  *float64
}

type InvoiceInput struct {
	CustomerID    string
	Amount        float64
	Services      []string
	PaymentMethod string
}

// LifecycleService owns service tickets and invoices. Invoices are not tied
// to ticket state.
type LifecycleService struct {
	Store     *db.MemStore
	Customers CustomerDirectory
	Events    events.Emitter
	Logger    zerolog.Logger
	Now       func() time.Time
	NewID     func() string
}

func (s *LifecycleService) CreateTicket(ctx context.Context, customerID, serviceType string, priority models.Priority, estimatedCost float64) (models.ServiceTicket, error) {
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		return models.ServiceTicket{}, apperr.Validation("service_type is required")
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.ServiceTicket{}, apperr.Validation(fmt.Sprintf("unknown priority %q", priority))
	}
	if estimatedCost < 0 || math.IsNaN(estimatedCost) {
		return models.ServiceTicket{}, apperr.InvalidAmount(estimatedCost)
	}
	if _, err := s.Customers.FindCustomer(ctx, customerID); err != nil {
		return models.ServiceTicket{}, err
	}

	now := s.now()
	t := models.ServiceTicket{
		ID:            s.newID(),
		CustomerID:    customerID,
		ServiceType:   serviceType,
		Status:        models.TicketOpen,
		Priority:      priority,
		CreatedAt:     now,
		UpdatedAt:     now,
		EstimatedCost: estimatedCost,
	}
	if err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		tx.PutTicket(t)
		return nil
	}); err != nil {
		return models.ServiceTicket{}, err
	}

	s.Logger.Info().Str("ticket_id", t.ID).Str("customer_id", customerID).Str("priority", string(priority)).Msg("ticket created")
	s.Events.Emit(ctx, events.TicketCreated, t.ID, map[string]any{
		"customer_id":  customerID,
		"service_type": serviceType,
		"priority":     priority,
		"status":       t.Status,
	})
	return t, nil
}

// TransitionTicket applies ev. Terminal tickets reject every event and are
// left unchanged.
func (s *LifecycleService) TransitionTicket(ctx context.Context, ticketID string, ev TicketEvent, opts TransitionOptions) (models.ServiceTicket, error) {
	if opts.ActualCost != nil && (*opts.ActualCost < 0 || math.IsNaN(*opts.ActualCost)) {
		return models.ServiceTicket{}, apperr.InvalidAmount(*opts.ActualCost)
	}

	var (
		updated models.ServiceTicket
		from    models.TicketStatus
	)
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		t, ok := tx.Ticket(ticketID)
		if !ok {
			return apperr.NotFound("ticket", ticketID)
		}
		from = t.Status
		to, ok := NextTicketStatus(from, ev)
		if !ok {
			return apperr.InvalidTransition(ticketID, string(from), string(ev))
		}

		now := s.now()
		switch ev {
		case EventSchedule:
			if opts.WorkerID != "" {
				if _, ok := tx.Worker(opts.WorkerID); !ok {
					return apperr.NotFound("worker", opts.WorkerID)
				}
				workerID := opts.WorkerID
				t.AssignedWorkerID = &workerID
			}
			scheduled := now
			if opts.ScheduledAt != nil {
				scheduled = opts.ScheduledAt.UTC()
			}
			t.ScheduledAt = &scheduled
		case EventComplete:
			if opts.ActualCost != nil {
				cost := *opts.ActualCost
				t.ActualCost = &cost
			}
		}
		t.Status = to
		t.UpdatedAt = now
		tx.PutTicket(t)
		updated = t
		return nil
	})
	if err != nil {
		return models.ServiceTicket{}, err
	}

	metrics.TicketTransitions.WithLabelValues(string(from), string(updated.Status)).Inc()
	s.Logger.Info().Str("ticket_id", ticketID).Str("from", string(from)).Str("to", string(updated.Status)).Msg("ticket transitioned")
	payload := map[string]any{
		"event": ev,
		"from":  from,
		"to":    updated.Status,
	}
	if updated.AssignedWorkerID != nil {
		payload["assigned_worker_id"] = *updated.AssignedWorkerID
	}
	s.Events.Emit(ctx, events.TicketTransitioned, ticketID, payload)
	return updated, nil
}

func (s *LifecycleService) CreateInvoice(ctx context.Context, in InvoiceInput) (models.Invoice, error) {
	if in.Amount < 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return models.Invoice{}, apperr.InvalidAmount(in.Amount)
	}
	if _, err := s.Customers.FindCustomer(ctx, in.CustomerID); err != nil {
		return models.Invoice{}, err
	}

	now := s.now()
	inv := models.Invoice{
		ID:         s.newID(),
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Services:   append([]string{}, in.Services...),
		Status:     models.InvoicePending,
		CreatedAt:  now,
		DueDate:    now.Add(models.InvoiceTerm),
	}
	if m := strings.TrimSpace(in.PaymentMethod); m != "" {
		inv.PaymentMethod = &m
	}
	if err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		tx.PutInvoice(inv)
		return nil
	}); err != nil {
		return models.Invoice{}, err
	}

	metrics.InvoicesCreated.Inc()
	s.Logger.Info().Str("invoice_id", inv.ID).Str("customer_id", in.CustomerID).Float64("amount", in.Amount).Msg("invoice created")
	s.Events.Emit(ctx, events.InvoiceCreated, inv.ID, map[string]any{
		"customer_id": in.CustomerID,
		"amount":      in.Amount,
		"due_date":    inv.DueDate,
	})
	return inv, nil
}

func (s *LifecycleService) MarkInvoicePaid(ctx context.Context, invoiceID, method string) (models.Invoice, error) {
	return s.updateInvoice(ctx, invoiceID, "pay", func(inv *models.Invoice, now time.Time) bool {
		if inv.Status != models.InvoicePending && inv.Status != models.InvoiceOverdue {
			return false
		}
		inv.Status = models.InvoicePaid
		inv.PaidAt = &now
		if m := strings.TrimSpace(method); m != "" {
			inv.PaymentMethod = &m
		}
		return true
	})
}

func (s *LifecycleService) CancelInvoice(ctx context.Context, invoiceID string) (models.Invoice, error) {
	return s.updateInvoice(ctx, invoiceID, "cancel", func(inv *models.Invoice, _ time.Time) bool {
		if inv.Status != models.InvoicePending && inv.Status != models.InvoiceOverdue {
			return false
		}
		inv.Status = models.InvoiceCancelled
		return true
	})
}

// SweepOverdue marks pending invoices past their due date as overdue.
func (s *LifecycleService) SweepOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	changed := []models.Invoice{}
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		for _, inv := range tx.Invoices() {
			if inv.Status == models.InvoicePending && now.After(inv.DueDate) {
				inv.Status = models.InvoiceOverdue
				tx.PutInvoice(inv)
				changed = append(changed, inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, inv := range changed {
		s.Events.Emit(ctx, events.InvoiceUpdated, inv.ID, map[string]any{"status": inv.Status})
	}
	if len(changed) > 0 {
		s.Logger.Info().Int("count", len(changed)).Msg("invoices marked overdue")
	}
	return changed, nil
}

func (s *LifecycleService) updateInvoice(ctx context.Context, invoiceID, action string, apply func(inv *models.Invoice, now time.Time) bool) (models.Invoice, error) {
	var (
		updated models.Invoice
		from    models.InvoiceStatus
	)
	err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		inv, ok := tx.Invoice(invoiceID)
		if !ok {
			return apperr.NotFound("invoice", invoiceID)
		}
		from = inv.Status
		if !apply(&inv, s.now()) {
			return apperr.New(apperr.CodeInvalidTransition, fmt.Sprintf("cannot %s invoice in status %s", action, from), map[string]any{
				"invoice_id": invoiceID,
				"from":       from,
				"event":      action,
			})
		}
		tx.PutInvoice(inv)
		updated = inv
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	s.Events.Emit(ctx, events.InvoiceUpdated, invoiceID, map[string]any{
		"from": from,
		"to":   updated.Status,
	})
	return updated, nil
}

func (s *LifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *LifecycleService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
