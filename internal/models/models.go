package models

import "time"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PerformanceMetrics struct {
	Efficiency           float64            `json:"efficiency"`
	QualityConsistency   float64            `json:"quality_consistency"`
	CustomerSatisfaction float64            `json:"customer_satisfaction"`
	SpecializationBonus  map[string]float64 `json:"specialization_bonus"`
	RegionalExpertise    []string           `json:"regional_expertise"`
}

type Worker struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Skills            []string           `json:"skills"`
	Location          Location           `json:"location"`
	Rating            float64            `json:"rating"`
	HourlyRate        float64            `json:"hourly_rate"`
	ActiveAssignments []string           `json:"active_assignments"`
	Performance       PerformanceMetrics `json:"performance"`
	Active            bool               `json:"active"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

type SiteStatus string

const (
	SiteOpen       SiteStatus = "open"
	SiteAssigned   SiteStatus = "assigned"
	SiteInProgress SiteStatus = "in_progress"
	SiteCompleted  SiteStatus = "completed"
	SiteCancelled  SiteStatus = "cancelled"
)

type PropertyDetails struct {
	SizeSqFt  float64 `json:"size_sq_ft"`
	Terrain   string  `json:"terrain"`
	GrassType string  `json:"grass_type"`
}

type SiteHistory struct {
	AvgCompletionMinutes float64 `json:"avg_completion_minutes"`
	CostOverrunRatio     float64 `json:"cost_overrun_ratio"`
	AvgCustomerRating    float64 `json:"avg_customer_rating"`
}

type Site struct {
	ID                string          `json:"id"`
	Address           string          `json:"address"`
	Region            string          `json:"region"`
	Location          Location        `json:"location"`
	Difficulty        float64         `json:"difficulty"`
	Status            SiteStatus      `json:"status"`
	PreferredSkills   []string        `json:"preferred_skills"`
	EstimatedDuration time.Duration   `json:"estimated_duration"`
	Property          PropertyDetails `json:"property"`
	RegionalFactors   []string        `json:"regional_factors"`
	History           SiteHistory     `json:"history"`
	CreatedAt         time.Time       `json:"created_at"`
}

type AssignmentStatus string

const (
	AssignmentScheduled AssignmentStatus = "scheduled"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Live reports whether the assignment still holds its worker and site.
func (s AssignmentStatus) Live() bool {
	return s == AssignmentScheduled || s == AssignmentActive
}

type Assignment struct {
	ID        string           `json:"id"`
	WorkerID  string           `json:"worker_id"`
	SiteID    string           `json:"site_id"`
	Status    AssignmentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Region  string `json:"region"`
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketScheduled  TicketStatus = "scheduled"
	TicketInProgress TicketStatus = "in_progress"
	TicketCompleted  TicketStatus = "completed"
	TicketCancelled  TicketStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s TicketStatus) Terminal() bool {
	return s == TicketCompleted || s == TicketCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type ServiceTicket struct {
	ID               string       `json:"id"`
	CustomerID       string       `json:"customer_id"`
	ServiceType      string       `json:"service_type"`
	Status           TicketStatus `json:"status"`
	Priority         Priority     `json:"priority"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	ScheduledAt      *time.Time   `json:"scheduled_at"`
	AssignedWorkerID *string      `json:"assigned_worker_id"`
	EstimatedCost    float64      `json:"estimated_cost"`
	ActualCost       *float64     `json:"actual_cost"`
}

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceTerm is the fixed payment window from creation to due date.
const InvoiceTerm = 30 * 24 * time.Hour

type Invoice struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	Amount        float64       `json:"amount"`
	Services      []string      `json:"services"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	DueDate       time.Time     `json:"due_date"`
	PaymentMethod *string       `json:"payment_method"`
	PaidAt        *time.Time    `json:"paid_at"`
}

type LifecycleEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}
