package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/ai"
	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/models"
)

const systemPrompt = `You are the customer assistant for a landscaping and grounds-maintenance company.
Answer questions about scheduled visits, open service tickets, invoices and seasonal lawn care.
Be brief and concrete. If you do not know something, say so and offer to open a ticket.`

// Store is the read side the assistant needs for customer context.
type Store interface {
	FindCustomer(ctx context.Context, id string) (models.Customer, error)
	ListTickets(ctx context.Context, f db.TicketFilter) ([]models.ServiceTicket, error)
	ListInvoices(ctx context.Context, status models.InvoiceStatus, customerID string) ([]models.Invoice, error)
}

type Reply struct {
	CustomerID string    `json:"customer_id"`
	Answer     string    `json:"answer"`
	Turns      int       `json:"turns"`
	AnsweredAt time.Time `json:"answered_at"`
}

type Service struct {
	Assistant ai.Assistant
	Store     Store
	History   *History
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Ask answers message for a known customer, replaying at most the configured
// number of previous turns. History is only recorded for successful answers.
func (s *Service) Ask(ctx context.Context, customerID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, apperr.Validation("message is required")
	}
	customer, err := s.Store.FindCustomer(ctx, customerID)
	if err != nil {
		return Reply{}, err
	}
	if s.Assistant == nil {
		return Reply{}, apperr.New(apperr.CodeAdvisoryUnavailable, "assistant is not configured", nil)
	}
	summary, err := s.customerContext(ctx, customer)
	if err != nil {
		return Reply{}, err
	}

	history := []ai.ChatMessage{{Role: "system", Content: systemPrompt + "\n\n" + summary}}
	history = append(history, s.History.Messages(customerID)...)

	answer, err := s.Assistant.Ask(ctx, message, history)
	if err != nil {
		s.Logger.Warn().Err(err).Str("customer_id", customerID).Msg("assistant call failed")
		return Reply{}, apperr.AdvisoryUnavailable(err)
	}
	answer = strings.TrimSpace(answer)
	s.History.Append(customerID, message, answer)

	return Reply{
		CustomerID: customerID,
		Answer:     answer,
		Turns:      len(s.History.Messages(customerID)) / 2,
		AnsweredAt: s.now(),
	}, nil
}

// Reset forgets the conversation with a known customer.
func (s *Service) Reset(ctx context.Context, customerID string) error {
	if _, err := s.Store.FindCustomer(ctx, customerID); err != nil {
		return err
	}
	s.History.Reset(customerID)
	s.Logger.Info().Str("customer_id", customerID).Msg("chat history reset")
	return nil
}

func (s *Service) customerContext(ctx context.Context, c models.Customer) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s (region %s, address %s).\n", c.Name, orDash(c.Region), orDash(c.Address))

	tickets, err := s.Store.ListTickets(ctx, db.TicketFilter{CustomerID: c.ID})
	if err != nil {
		return "", err
	}
	open := 0
	for _, t := range tickets {
		if t.Status.Terminal() {
			continue
		}
		open++
		fmt.Fprintf(&sb, "Ticket %s: %s, %s priority, status %s", t.ID, t.ServiceType, t.Priority, t.Status)
		if t.ScheduledAt != nil {
			fmt.Fprintf(&sb, ", scheduled %s", t.ScheduledAt.Format("2006-01-02 15:04"))
		}
		sb.WriteString(".\n")
	}
	if open == 0 {
		sb.WriteString("No open tickets.\n")
	}

	invoices, err := s.Store.ListInvoices(ctx, "", c.ID)
	if err != nil {
		return "", err
	}
	var due float64
	for _, inv := range invoices {
		if inv.Status == models.InvoicePending || inv.Status == models.InvoiceOverdue {
			due += inv.Amount
		}
	}
	fmt.Fprintf(&sb, "Outstanding balance: $%.2f.", due)
	return sb.String(), nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
