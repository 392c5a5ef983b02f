package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee   TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority   TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeEscalation TicketChangeType = "ESCALATION"
	ChangeTypeRating     TicketChangeType = "RATING"
)

// TicketHistory is an immutable audit trail entry. Rows are append
// only; nothing in the service updates or deletes them.
type TicketHistory struct {
	ID         int64
	TicketID   int64
	ActorType  ActorType
	ActorID    string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	Notes      string
	CreatedAt  time.Time
}
