// Package sla computes deadlines and compliance for tickets. All
// functions are pure: same inputs, same outputs, no clock reads.
package sla

import (
	"time"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// Default resolution budgets per priority, used when the category
// carries no SLA override.
var priorityHours = map[domain.TicketPriority]int{
	domain.TicketPriorityUrgent: 4,
	domain.TicketPriorityHigh:   8,
	domain.TicketPriorityMedium: 24,
	domain.TicketPriorityLow:    72,
}

// Hours returns the SLA budget in hours for a priority and optional
// category override. An unknown priority is a programming error and
// falls back to the medium budget.
func Hours(priority domain.TicketPriority, categorySLAHours *int) int {
	if categorySLAHours != nil && *categorySLAHours > 0 {
		return *categorySLAHours
	}
	if h, ok := priorityHours[priority]; ok {
		return h
	}
	return priorityHours[domain.TicketPriorityMedium]
}

// Deadline maps creation time, priority and category override to the
// resolution due date.
func Deadline(priority domain.TicketPriority, categorySLAHours *int, createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(Hours(priority, categorySLAHours)) * time.Hour)
}

// Compliance is the outcome of comparing resolution time to the budget.
type Compliance string

const (
	WithinSLA Compliance = "WITHIN_SLA"
	Breached  Compliance = "BREACHED"
)

// ComplianceStatus compares actual elapsed minutes against the SLA
// threshold. Resolving exactly at the threshold counts as compliant.
func ComplianceStatus(createdAt, resolvedAt time.Time, priority domain.TicketPriority, categorySLAHours *int) Compliance {
	budget := time.Duration(Hours(priority, categorySLAHours)) * time.Hour
	if resolvedAt.Sub(createdAt) <= budget {
		return WithinSLA
	}
	return Breached
}

// IsOverdue reports whether a ticket has blown past its due date.
// Settled tickets (resolved, closed, cancelled) are never overdue, and
// a ticket with no due date stamped yet cannot be overdue.
func IsOverdue(now time.Time, dueAt *time.Time, status domain.TicketStatus) bool {
	if dueAt == nil || domain.IsSettled(status) {
		return false
	}
	return now.After(*dueAt)
}
