package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusAssigned     TicketStatus = "ASSIGNED"
	TicketStatusInProgress   TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingUser  TicketStatus = "WAITING_USER"
	TicketStatusWaitingAdmin TicketStatus = "WAITING_ADMIN"
	TicketStatusResolved     TicketStatus = "RESOLVED"
	TicketStatusClosed       TicketStatus = "CLOSED"
	TicketStatusCancelled    TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ValidPriority reports whether a priority value is a known enum member.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for helpdesk requests. Status is the single
// source of lifecycle truth; the nullable timestamps are historical
// record only and are never consulted to infer state.
type Ticket struct {
	ID                int64
	Number            string
	RequesterID       string
	ApplicationID     int64
	CategoryID        int64
	TechnicianNIP     *string
	Title             string
	Description       string
	Status            TicketStatus
	Priority          TicketPriority
	DueAt             *time.Time
	FirstResponseAt   *time.Time
	ResolvedAt        *time.Time
	ClosedAt          *time.Time
	ResolutionMinutes *int
	IsEscalated       bool
	Rating            *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:         {TicketStatusAssigned, TicketStatusCancelled},
	TicketStatusAssigned:     {TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusInProgress:   {TicketStatusWaitingUser, TicketStatusWaitingAdmin, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusWaitingUser:  {TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusWaitingAdmin: {TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusResolved:     {TicketStatusClosed, TicketStatusOpen},
	TicketStatusClosed:       {},
	TicketStatusCancelled:    {},
}

// CanTransition reports whether moving from current to next is a legal
// lifecycle edge. RESOLVED -> OPEN (reopen) is listed here; who may
// take that edge is enforced by the lifecycle service.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from status.
func IsTerminal(status TicketStatus) bool {
	return status == TicketStatusClosed || status == TicketStatusCancelled
}

// IsSettled reports whether a ticket no longer counts against the SLA
// clock: resolved, closed or cancelled.
func IsSettled(status TicketStatus) bool {
	return status == TicketStatusResolved || IsTerminal(status)
}

// ActiveStatuses are the states that occupy technician capacity.
// Waiting tickets still belong to their technician, so they count.
var ActiveStatuses = []TicketStatus{
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusWaitingUser,
	TicketStatusWaitingAdmin,
}
