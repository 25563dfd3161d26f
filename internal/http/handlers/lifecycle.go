package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/models"
	"github.com/greenroute/backend/internal/service"
)

// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/customers [get]
func (h *Handler) CustomersList(c *gin.Context) {
	items, err := h.Store.ListCustomers(c.Request.Context())
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Get customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} ErrorResponse
// @Router /api/customers/{id} [get]
func (h *Handler) CustomerDetails(c *gin.Context) {
	cust, err := h.Store.FindCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

type CreateTicketRequest struct {
	CustomerID    string  `json:"customer_id" validate:"required"`
	ServiceType   string  `json:"service_type" validate:"required"`
	Priority      string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// @Summary Create service ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body CreateTicketRequest true "Ticket"
// @Success 201 {object} models.ServiceTicket
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Lifecycle.CreateTicket(c.Request.Context(), req.CustomerID, req.ServiceType, models.Priority(req.Priority), req.EstimatedCost)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary List service tickets
// @Tags tickets
// @Produce json
// @Param status query string false "Ticket status"
// @Param customer_id query string false "Customer ID"
// @Success 200 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	items, err := h.Store.ListTickets(c.Request.Context(), db.TicketFilter{
		Status:     models.TicketStatus(c.Query("status")),
		CustomerID: c.Query("customer_id"),
	})
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Get service ticket
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} models.ServiceTicket
// @Failure 404 {object} ErrorResponse
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketDetails(c *gin.Context) {
	t, err := h.Store.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type TransitionTicketRequest struct {
	Event       string     `json:"event" validate:"required"`
	WorkerID    string     `json:"worker_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ActualCost  *float64   `json:"actual_cost"`
}

// @Summary Apply a lifecycle event to a ticket
// @Description Events: schedule, start, complete, cancel.
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param body body TransitionTicketRequest true "Transition"
// @Success 200 {object} models.ServiceTicket
// @Failure 409 {object} ErrorResponse
// @Router /api/tickets/{id}/transition [post]
func (h *Handler) TransitionTicket(c *gin.Context) {
	var req TransitionTicketRequest
	if !h.bind(c, &req) {
		return
	}
	ev, ok := service.ParseTicketEvent(req.Event)
	if !ok {
		h.writeAppError(c, apperr.Validation("unknown ticket event "+req.Event))
		return
	}
	t, err := h.Lifecycle.TransitionTicket(c.Request.Context(), c.Param("id"), ev, service.TransitionOptions{
		WorkerID:    req.WorkerID,
		ScheduledAt: req.ScheduledAt,
		ActualCost:  req.ActualCost,
	})
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type CreateInvoiceRequest struct {
	CustomerID    string   `json:"customer_id" validate:"required"`
	Amount        float64  `json:"amount"`
	Services      []string `json:"services" validate:"dive,required"`
	PaymentMethod string   `json:"payment_method"`
}

// @Summary Create invoice
// @Description Due date is 30 days after creation.
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} models.Invoice
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/invoices [post]
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	inv, err := h.Lifecycle.CreateInvoice(c.Request.Context(), service.InvoiceInput{
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Services:      req.Services,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param status query string false "Invoice status"
// @Param customer_id query string false "Customer ID"
// @Success 200 {object} map[string]any
// @Router /api/invoices [get]
func (h *Handler) InvoicesList(c *gin.Context) {
	items, err := h.Store.ListInvoices(c.Request.Context(), models.InvoiceStatus(c.Query("status")), c.Query("customer_id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} ErrorResponse
// @Router /api/invoices/{id} [get]
func (h *Handler) InvoiceDetails(c *gin.Context) {
	inv, err := h.Store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type PayInvoiceRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// @Summary Mark invoice paid
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body PayInvoiceRequest false "Payment"
// @Success 200 {object} models.Invoice
// @Failure 409 {object} ErrorResponse
// @Router /api/invoices/{id}/pay [post]
func (h *Handler) PayInvoice(c *gin.Context) {
	var req PayInvoiceRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	inv, err := h.Lifecycle.MarkInvoicePaid(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// @Summary Cancel invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 409 {object} ErrorResponse
// @Router /api/invoices/{id}/cancel [post]
func (h *Handler) CancelInvoice(c *gin.Context) {
	inv, err := h.Lifecycle.CancelInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// @Summary Mark pending invoices past due as overdue
// @Tags invoices
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/invoices/sweep [post]
func (h *Handler) SweepInvoices(c *gin.Context) {
	changed, err := h.Lifecycle.SweepOverdue(c.Request.Context(), h.now())
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overdue": len(changed), "items": changed})
}
