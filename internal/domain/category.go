package domain

import "time"

// Application represents a supported system tickets are filed against.
type Application struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a problem classification under exactly one application.
// SLAHours overrides the priority-based deadline table when set.
type Category struct {
	ID              int64
	ApplicationID   int64
	Name            string
	DefaultPriority TicketPriority
	SLAHours        *int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CategoryStats are derived aggregates recomputed from ticket rows on
// resolution. They are never hand-edited.
type CategoryStats struct {
	CategoryID           int64
	TicketCount          int
	ResolvedCount        int
	AvgResolutionMinutes int
	SuccessRate          float64
}
