package events

import (
	"time"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket.created"
	EventTicketAssigned      EventType = "ticket.assigned"
	EventTicketStatusChanged EventType = "ticket.status_changed"
	EventTicketEscalated     EventType = "ticket.escalated"
	EventTicketResolved      EventType = "ticket.resolved"
	EventTicketClosed        EventType = "ticket.closed"
)

// Event represents a domain event emitted by the lifecycle engine.
// External sinks (notification dispatch, audit log) consume these.
type Event struct {
	ID           string       `json:"id"`
	Type         EventType    `json:"type"`
	TicketID     int64        `json:"ticket_id"`
	TicketNumber string       `json:"ticket_number"`
	Actor        domain.Actor `json:"actor"`
	Timestamp    time.Time    `json:"timestamp"`
	Payload      interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ApplicationID int64                 `json:"application_id"`
	CategoryID    int64                 `json:"category_id"`
	Priority      domain.TicketPriority `json:"priority"`
	Title         string                `json:"title"`
	DueAt         *time.Time            `json:"due_at,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldTechnicianNIP *string `json:"old_technician_nip,omitempty"`
	TechnicianNIP    string  `json:"technician_nip"`
	Auto             bool    `json:"auto"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Notes     string              `json:"notes,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Status        domain.TicketStatus `json:"status"`
	DueAt         *time.Time          `json:"due_at,omitempty"`
	TechnicianNIP *string             `json:"technician_nip,omitempty"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolutionMinutes int    `json:"resolution_minutes"`
	SLACompliance     string `json:"sla_compliance"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ClosedAt time.Time `json:"closed_at"`
}
