package dto

import (
	"time"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ApplicationID int64                 `json:"application_id"`
	CategoryID    int64                 `json:"category_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority,omitempty"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status domain.TicketStatus `json:"status"`
	Notes  string              `json:"notes,omitempty"`
}

// AssignRequest payload.
type AssignRequest struct {
	TechnicianNIP string `json:"technician_nip"`
	Notes         string `json:"notes,omitempty"`
}

// RateRequest payload.
type RateRequest struct {
	Rating int `json:"rating"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                int64                 `json:"id"`
	Number            string                `json:"number"`
	RequesterID       string                `json:"requester_id"`
	ApplicationID     int64                 `json:"application_id"`
	CategoryID        int64                 `json:"category_id"`
	TechnicianNIP     *string               `json:"technician_nip,omitempty"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Status            domain.TicketStatus   `json:"status"`
	Priority          domain.TicketPriority `json:"priority"`
	DueAt             *time.Time            `json:"due_at,omitempty"`
	FirstResponseAt   *time.Time            `json:"first_response_at,omitempty"`
	ResolvedAt        *time.Time            `json:"resolved_at,omitempty"`
	ClosedAt          *time.Time            `json:"closed_at,omitempty"`
	ResolutionMinutes *int                  `json:"resolution_minutes,omitempty"`
	IsEscalated       bool                  `json:"is_escalated"`
	Rating            *int                  `json:"rating,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TicketHistoryResponse is a single audit entry.
type TicketHistoryResponse struct {
	ID         int64                   `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorType  domain.ActorType        `json:"actor_type"`
	ActorID    string                  `json:"actor_id"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	Notes      string                  `json:"notes,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// SweepResponse reports the outcome of a manual escalation sweep.
type SweepResponse struct {
	EscalatedTicketIDs []int64   `json:"escalated_ticket_ids"`
	SweptAt            time.Time `json:"swept_at"`
}

// ApplicationResponse is the catalog view of an application.
type ApplicationResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// CategoryResponse is the catalog view of a category.
type CategoryResponse struct {
	ID              int64                 `json:"id"`
	ApplicationID   int64                 `json:"application_id"`
	Name            string                `json:"name"`
	DefaultPriority domain.TicketPriority `json:"default_priority"`
	SLAHours        *int                  `json:"sla_hours,omitempty"`
	IsActive        bool                  `json:"is_active"`
}

// CategoryStatsResponse carries derived category aggregates.
type CategoryStatsResponse struct {
	CategoryID           int64   `json:"category_id"`
	TicketCount          int     `json:"ticket_count"`
	ResolvedCount        int     `json:"resolved_count"`
	AvgResolutionMinutes int     `json:"avg_resolution_minutes"`
	SuccessRate          float64 `json:"success_rate"`
}
