package db

import (
	"context"
	"sync"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/models"
)

// MemStore is the in-memory system of record for workers, sites, assignments,
// customers, tickets and invoices. A single RWMutex serializes mutations;
// readers receive deep copies and never hold the lock past the copy.
type MemStore struct {
	mu sync.RWMutex

	workers     *table[models.Worker]
	sites       *table[models.Site]
	assignments *table[models.Assignment]
	customers   *table[models.Customer]
	tickets     *table[models.ServiceTicket]
	invoices    *table[models.Invoice]
}

func NewMemStore() *MemStore {
	return &MemStore{
		workers:     newTable(cloneWorker),
		sites:       newTable(cloneSite),
		assignments: newTable(func(a models.Assignment) models.Assignment { return a }),
		customers:   newTable(func(c models.Customer) models.Customer { return c }),
		tickets:     newTable(cloneTicket),
		invoices:    newTable(cloneInvoice),
	}
}

// WithTx runs fn under the write lock. Writes staged through tx are applied
// only if fn returns nil, so a failed operation leaves every entity unchanged.
func (s *MemStore) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin()
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// View runs fn under the read lock. Writes staged through tx are discarded.
func (s *MemStore) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.begin())
}

func (s *MemStore) begin() *Tx {
	return &Tx{
		workers:     s.workers.tx(),
		sites:       s.sites.tx(),
		assignments: s.assignments.tx(),
		customers:   s.customers.tx(),
		tickets:     s.tickets.tx(),
		invoices:    s.invoices.tx(),
	}
}

// GetWorker returns a copy of the worker, or a NOT_FOUND error. Context
// errors are returned as-is so callers can tell a timeout from a miss.
func (s *MemStore) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	return lookup(ctx, s, "worker", id, (*Tx).Worker)
}

func (s *MemStore) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	return collect(ctx, s, (*Tx).Workers)
}

func (s *MemStore) GetSite(ctx context.Context, id string) (models.Site, error) {
	return lookup(ctx, s, "site", id, (*Tx).Site)
}

func (s *MemStore) ListSites(ctx context.Context, status models.SiteStatus) ([]models.Site, error) {
	return collect(ctx, s, func(tx *Tx) []models.Site {
		out := []models.Site{}
		for _, site := range tx.Sites() {
			if status == "" || site.Status == status {
				out = append(out, site)
			}
		}
		return out
	})
}

// Snapshot copies a site and the full worker pool in one read-locked pass.
func (s *MemStore) Snapshot(ctx context.Context, siteID string) (models.Site, []models.Worker, error) {
	var (
		site    models.Site
		workers []models.Worker
		ok      bool
	)
	err := s.View(ctx, func(tx *Tx) error {
		site, ok = tx.Site(siteID)
		if ok {
			workers = tx.Workers()
		}
		return nil
	})
	if err != nil {
		return models.Site{}, nil, err
	}
	if !ok {
		return models.Site{}, nil, apperr.NotFound("site", siteID)
	}
	return site, workers, nil
}

func (s *MemStore) GetAssignment(ctx context.Context, id string) (models.Assignment, error) {
	return lookup(ctx, s, "assignment", id, (*Tx).Assignment)
}

func (s *MemStore) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	return collect(ctx, s, (*Tx).Assignments)
}

// FindCustomer implements the customer directory lookup.
func (s *MemStore) FindCustomer(ctx context.Context, id string) (models.Customer, error) {
	return lookup(ctx, s, "customer", id, (*Tx).Customer)
}

func (s *MemStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return collect(ctx, s, (*Tx).Customers)
}

func (s *MemStore) GetTicket(ctx context.Context, id string) (models.ServiceTicket, error) {
	return lookup(ctx, s, "ticket", id, (*Tx).Ticket)
}

type TicketFilter struct {
	Status     models.TicketStatus
	CustomerID string
}

func (s *MemStore) ListTickets(ctx context.Context, f TicketFilter) ([]models.ServiceTicket, error) {
	return collect(ctx, s, func(tx *Tx) []models.ServiceTicket {
		out := []models.ServiceTicket{}
		for _, t := range tx.Tickets() {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.CustomerID != "" && t.CustomerID != f.CustomerID {
				continue
			}
			out = append(out, t)
		}
		return out
	})
}

func (s *MemStore) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	return lookup(ctx, s, "invoice", id, (*Tx).Invoice)
}

func (s *MemStore) ListInvoices(ctx context.Context, status models.InvoiceStatus, customerID string) ([]models.Invoice, error) {
	return collect(ctx, s, func(tx *Tx) []models.Invoice {
		out := []models.Invoice{}
		for _, inv := range tx.Invoices() {
			if status != "" && inv.Status != status {
				continue
			}
			if customerID != "" && inv.CustomerID != customerID {
				continue
			}
			out = append(out, inv)
		}
		return out
	})
}

func lookup[T any](ctx context.Context, s *MemStore, kind, id string, find func(*Tx, string) (T, bool)) (T, error) {
	var (
		v  T
		ok bool
	)
	if err := s.View(ctx, func(tx *Tx) error {
		v, ok = find(tx, id)
		return nil
	}); err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return v, apperr.NotFound(kind, id)
	}
	return v, nil
}

func collect[T any](ctx context.Context, s *MemStore, list func(*Tx) []T) ([]T, error) {
	var out []T
	if err := s.View(ctx, func(tx *Tx) error {
		out = list(tx)
		return nil
	}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Tx is a staged view over the store. Getters return copies; Put* stages a write.
type Tx struct {
	workers     *tableTx[models.Worker]
	sites       *tableTx[models.Site]
	assignments *tableTx[models.Assignment]
	customers   *tableTx[models.Customer]
	tickets     *tableTx[models.ServiceTicket]
	invoices    *tableTx[models.Invoice]
}

func (tx *Tx) commit() {
	tx.workers.commit()
	tx.sites.commit()
	tx.assignments.commit()
	tx.customers.commit()
	tx.tickets.commit()
	tx.invoices.commit()
}

func (tx *Tx) Worker(id string) (models.Worker, bool) {
	return tx.workers.get(id)
}

func (tx *Tx) Workers() []models.Worker {
	return tx.workers.list()
}

func (tx *Tx) PutWorker(w models.Worker) {
	tx.workers.put(w.ID, w)
}

func (tx *Tx) Site(id string) (models.Site, bool) {
	return tx.sites.get(id)
}

func (tx *Tx) Sites() []models.Site {
	return tx.sites.list()
}

func (tx *Tx) PutSite(site models.Site) {
	tx.sites.put(site.ID, site)
}

func (tx *Tx) Assignment(id string) (models.Assignment, bool) {
	return tx.assignments.get(id)
}

func (tx *Tx) Assignments() []models.Assignment {
	return tx.assignments.list()
}

func (tx *Tx) PutAssignment(a models.Assignment) {
	tx.assignments.put(a.ID, a)
}

func (tx *Tx) Customer(id string) (models.Customer, bool) {
	return tx.customers.get(id)
}

func (tx *Tx) Customers() []models.Customer {
	return tx.customers.list()
}

func (tx *Tx) PutCustomer(c models.Customer) {
	tx.customers.put(c.ID, c)
}

func (tx *Tx) Ticket(id string) (models.ServiceTicket, bool) {
	return tx.tickets.get(id)
}

func (tx *Tx) Tickets() []models.ServiceTicket {
	return tx.tickets.list()
}

func (tx *Tx) PutTicket(t models.ServiceTicket) {
	tx.tickets.put(t.ID, t)
}

func (tx *Tx) Invoice(id string) (models.Invoice, bool) {
	return tx.invoices.get(id)
}

func (tx *Tx) Invoices() []models.Invoice {
	return tx.invoices.list()
}

func (tx *Tx) PutInvoice(inv models.Invoice) {
	tx.invoices.put(inv.ID, inv)
}

// LiveAssignmentsForSite returns scheduled or active assignments referencing siteID.
func (tx *Tx) LiveAssignmentsForSite(siteID string) []models.Assignment {
	var out []models.Assignment
	for _, a := range tx.assignments.list() {
		if a.SiteID == siteID && a.Status.Live() {
			out = append(out, a)
		}
	}
	return out
}

type table[T any] struct {
	rows  map[string]T
	order []string
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: map[string]T{}, clone: clone}
}

func (t *table[T]) tx() *tableTx[T] {
	return &tableTx[T]{base: t, pending: map[string]T{}}
}

type tableTx[T any] struct {
	base     *table[T]
	pending  map[string]T
	newOrder []string
}

func (t *tableTx[T]) get(id string) (T, bool) {
	if v, ok := t.pending[id]; ok {
		return t.base.clone(v), true
	}
	v, ok := t.base.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.base.clone(v), true
}

func (t *tableTx[T]) put(id string, v T) {
	if _, ok := t.pending[id]; !ok {
		if _, exists := t.base.rows[id]; !exists {
			t.newOrder = append(t.newOrder, id)
		}
	}
	t.pending[id] = t.base.clone(v)
}

func (t *tableTx[T]) list() []T {
	out := make([]T, 0, len(t.base.order)+len(t.newOrder))
	for _, id := range t.base.order {
		v, _ := t.get(id)
		out = append(out, v)
	}
	for _, id := range t.newOrder {
		v, _ := t.get(id)
		out = append(out, v)
	}
	return out
}

func (t *tableTx[T]) commit() {
	for id, v := range t.pending {
		t.base.rows[id] = v
	}
	t.base.order = append(t.base.order, t.newOrder...)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneWorker(w models.Worker) models.Worker {
	w.Skills = cloneStrings(w.Skills)
	w.ActiveAssignments = cloneStrings(w.ActiveAssignments)
	w.Performance.RegionalExpertise = cloneStrings(w.Performance.RegionalExpertise)
	if w.Performance.SpecializationBonus != nil {
		m := make(map[string]float64, len(w.Performance.SpecializationBonus))
		for k, v := range w.Performance.SpecializationBonus {
			m[k] = v
		}
		w.Performance.SpecializationBonus = m
	}
	return w
}

func cloneSite(s models.Site) models.Site {
	s.PreferredSkills = cloneStrings(s.PreferredSkills)
	s.RegionalFactors = cloneStrings(s.RegionalFactors)
	return s
}

func cloneTicket(t models.ServiceTicket) models.ServiceTicket {
	if t.ScheduledAt != nil {
		v := *t.ScheduledAt
		t.ScheduledAt = &v
	}
	if t.AssignedWorkerID != nil {
		v := *t.AssignedWorkerID
		t.AssignedWorkerID = &v
	}
	if t.ActualCost != nil {
		v := *t.ActualCost
		t.ActualCost = &v
	}
	return t
}

func cloneInvoice(inv models.Invoice) models.Invoice {
	inv.Services = cloneStrings(inv.Services)
	if inv.PaymentMethod != nil {
		v := *inv.PaymentMethod
		inv.PaymentMethod = &v
	}
	if inv.PaidAt != nil {
		v := *inv.PaidAt
		inv.PaidAt = &v
	}
	return inv
}
