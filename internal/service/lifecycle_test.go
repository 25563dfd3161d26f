package service

import (
	"context"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/models"
)

func newLifecycleFixture(t *testing.T) (*LifecycleService, *db.MemStore, *recordingEmitter) {
	t.Helper()
	store := seedStore(t,
		[]models.Worker{{ID: "w1", Active: true}},
		nil,
		[]models.Customer{{ID: "c1", Name: "Maple Court HOA"}},
	)
	em := &recordingEmitter{}
	svc := &LifecycleService{
		Store:     store,
		Customers: store,
		Events:    em,
		Logger:    nopLogger(),
		Now:       func() time.Time { return fixedNow },
		NewID:     sequentialIDs("id"),
	}
	return svc, store, em
}

func TestNextTicketStatusTable(t *testing.T) {
	allowed := map[models.TicketStatus]map[TicketEvent]models.TicketStatus{
		models.TicketOpen:       {EventSchedule: models.TicketScheduled, EventCancel: models.TicketCancelled},
		models.TicketScheduled:  {EventStart: models.TicketInProgress, EventCancel: models.TicketCancelled},
		models.TicketInProgress: {EventComplete: models.TicketCompleted, EventCancel: models.TicketCancelled},
	}
	statuses := []models.TicketStatus{models.TicketOpen, models.TicketScheduled, models.TicketInProgress, models.TicketCompleted, models.TicketCancelled}
	evs := []TicketEvent{EventSchedule, EventStart, EventComplete, EventCancel}
	for _, from := range statuses {
		for _, ev := range evs {
			to, ok := NextTicketStatus(from, ev)
			want, wantOK := allowed[from][ev]
			if ok != wantOK || to != want {
				t.Fatalf("NextTicketStatus(%s, %s) = %s, %v; want %s, %v", from, ev, to, ok, want, wantOK)
			}
		}
	}
}

func TestParseTicketEvent(t *testing.T) {
	ev, ok := ParseTicketEvent(" Schedule ")
	assert.True(t, ok)
	assert.Equal(t, EventSchedule, ev)

	_, ok = ParseTicketEvent("reopen")
	assert.False(t, ok)
}

func TestCreateTicket(t *testing.T) {
	svc, store, em := newLifecycleFixture(t)
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, "c1", "aeration", "", 120)
	require.NoError(t, err)
	assert.Equal(t, "id-1", tk.ID)
	assert.Equal(t, models.TicketOpen, tk.Status)
	assert.Equal(t, models.PriorityMedium, tk.Priority)
	assert.Equal(t, fixedNow, tk.CreatedAt)

	got, err := store.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk, got)
	assert.Equal(t, []string{events.TicketCreated}, em.names())
}

func TestCreateTicketErrors(t *testing.T) {
	svc, store, em := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, "nobody", "aeration", models.PriorityHigh, 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateTicket(ctx, "c1", "  ", models.PriorityHigh, 10)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateTicket(ctx, "c1", "aeration", "critical", 10)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateTicket(ctx, "c1", "aeration", models.PriorityLow, -5)
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)

	tickets, err := store.ListTickets(ctx, db.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Empty(t, em.names())
}

func TestTicketHappyPath(t *testing.T) {
	svc, _, em := newLifecycleFixture(t)
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, "c1", "mowing", models.PriorityHigh, 80)
	require.NoError(t, err)

	when := fixedNow.Add(48 * time.Hour)
	tk, err = svc.TransitionTicket(ctx, tk.ID, EventSchedule, TransitionOptions{WorkerID: "w1", ScheduledAt: &when})
	require.NoError(t, err)
	assert.Equal(t, models.TicketScheduled, tk.Status)
	require.NotNil(t, tk.AssignedWorkerID)
	assert.Equal(t, "w1", *tk.AssignedWorkerID)
	require.NotNil(t, tk.ScheduledAt)
	assert.Equal(t, when, *tk.ScheduledAt)

	tk, err = svc.TransitionTicket(ctx, tk.ID, EventStart, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, tk.Status)

	cost := 95.5
	tk, err = svc.TransitionTicket(ctx, tk.ID, EventComplete, TransitionOptions{ActualCost: &cost})
	require.NoError(t, err)
	assert.Equal(t, models.TicketCompleted, tk.Status)
	require.NotNil(t, tk.ActualCost)
	assert.Equal(t, 95.5, *tk.ActualCost)

	assert.Equal(t, []string{
		events.TicketCreated,
		events.TicketTransitioned,
		events.TicketTransitioned,
		events.TicketTransitioned,
	}, em.names())
}

func TestCancelledTicketRejectsEveryEvent(t *testing.T) {
	svc, store, _ := newLifecycleFixture(t)
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, "c1", "mowing", models.PriorityLow, 0)
	require.NoError(t, err)
	tk, err = svc.TransitionTicket(ctx, tk.ID, EventCancel, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, tk.Status)

	for _, ev := range []TicketEvent{EventSchedule, EventStart, EventComplete, EventCancel} {
		_, err := svc.TransitionTicket(ctx, tk.ID, ev, TransitionOptions{})
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "event %s", ev)
	}
	got, _ := store.GetTicket(ctx, tk.ID)
	assert.Equal(t, tk, got)
}

func TestTransitionTicketInvalidLeavesTicketUnchanged(t *testing.T) {
	svc, store, _ := newLifecycleFixture(t)
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, "c1", "mowing", models.PriorityLow, 0)
	require.NoError(t, err)

	_, err = svc.TransitionTicket(ctx, tk.ID, EventComplete, TransitionOptions{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))

	_, err = svc.TransitionTicket(ctx, tk.ID, EventSchedule, TransitionOptions{WorkerID: "ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, _ := store.GetTicket(ctx, tk.ID)
	assert.Equal(t, models.TicketOpen, got.Status)
	assert.Nil(t, got.AssignedWorkerID)

	_, err = svc.TransitionTicket(ctx, "missing", EventStart, TransitionOptions{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateInvoice(t *testing.T) {
	svc, _, em := newLifecycleFixture(t)

	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		CustomerID:    "c1",
		Amount:        240,
		Services:      []string{"mowing", "edging"},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), inv.DueDate)
	require.NotNil(t, inv.PaymentMethod)
	assert.Equal(t, "card", *inv.PaymentMethod)
	assert.Equal(t, []string{events.InvoiceCreated}, em.names())
}

func TestInvoiceDueDateIsThirtyDaysForAnyCreationTime(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	cases := []struct {
		name    string
		created time.Time
	}{
		{"month end", time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC)},
		{"leap day", time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)},
		{"end of year", time.Date(2023, time.December, 31, 18, 30, 0, 0, time.UTC)},
		{"before spring forward", time.Date(2024, time.March, 1, 9, 0, 0, 0, chicago)},
		{"on spring forward", time.Date(2024, time.March, 10, 1, 30, 0, 0, chicago)},
		{"before fall back", time.Date(2024, time.October, 15, 8, 0, 0, 0, chicago)},
		{"nanoseconds", time.Date(2025, time.May, 31, 0, 0, 0, 999, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newLifecycleFixture(t)
			svc.Now = func() time.Time { return tc.created }

			inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: "c1", Amount: 50})
			if err != nil {
				t.Fatalf("create invoice: %v", err)
			}
			if !inv.CreatedAt.Equal(tc.created) {
				t.Fatalf("created at %v, want %v", inv.CreatedAt, tc.created)
			}
			if got := inv.DueDate.Sub(inv.CreatedAt); got != 30*24*time.Hour {
				t.Fatalf("due date is %v after creation, want 720h", got)
			}
		})
	}
}

func TestCreateInvoiceZeroAmountAllowed(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: "c1"})
	require.NoError(t, err)
	assert.Zero(t, inv.Amount)
	assert.Nil(t, inv.PaymentMethod)
}

func TestCreateInvoiceRejects(t *testing.T) {
	svc, store, _ := newLifecycleFixture(t)
	ctx := context.Background()

	for _, amt := range []float64{-0.01, math.NaN(), math.Inf(1)} {
		_, err := svc.CreateInvoice(ctx, InvoiceInput{CustomerID: "c1", Amount: amt})
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	}
	_, err := svc.CreateInvoice(ctx, InvoiceInput{CustomerID: "ghost", Amount: 10})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	invoices, err := store.ListInvoices(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestInvoicePayAndSweep(t *testing.T) {
	svc, store, _ := newLifecycleFixture(t)
	ctx := context.Background()

	a, err := svc.CreateInvoice(ctx, InvoiceInput{CustomerID: "c1", Amount: 10})
	require.NoError(t, err)
	b, err := svc.CreateInvoice(ctx, InvoiceInput{CustomerID: "c1", Amount: 20})
	require.NoError(t, err)

	paid, err := svc.MarkInvoicePaid(ctx, a.ID, "ach")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkInvoicePaid(ctx, a.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	changed, err := svc.SweepOverdue(ctx, b.DueDate)
	require.NoError(t, err)
	assert.Empty(t, changed)

	changed, err = svc.SweepOverdue(ctx, b.DueDate.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, b.ID, changed[0].ID)

	got, _ := store.GetInvoice(ctx, b.ID)
	assert.Equal(t, models.InvoiceOverdue, got.Status)

	paid, err = svc.MarkInvoicePaid(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.Status)
}

func TestCancelInvoice(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, InvoiceInput{CustomerID: "c1", Amount: 10})
	require.NoError(t, err)
	inv, err = svc.CancelInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, inv.Status)

	_, err = svc.MarkInvoicePaid(ctx, inv.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	_, err = svc.CancelInvoice(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
