package domain

import "time"

// TechnicianStatus enumerates employment states.
type TechnicianStatus string

const (
	TechnicianStatusActive   TechnicianStatus = "ACTIVE"
	TechnicianStatusInactive TechnicianStatus = "INACTIVE"
)

// ExpertiseLevel grades a technician's competence in a category.
type ExpertiseLevel string

const (
	ExpertiseNone         ExpertiseLevel = "NONE"
	ExpertiseBeginner     ExpertiseLevel = "BEGINNER"
	ExpertiseIntermediate ExpertiseLevel = "INTERMEDIATE"
	ExpertiseAdvanced     ExpertiseLevel = "ADVANCED"
	ExpertiseExpert       ExpertiseLevel = "EXPERT"
)

// Technician models a worker eligible to receive tickets. NIP is the
// identity key. Current workload is never stored on this row; it is
// always a live aggregate over tickets.
type Technician struct {
	NIP                  string
	Name                 string
	Email                string
	Status               TechnicianStatus
	SkillLevel           ExpertiseLevel
	MaxConcurrentTickets int
	IsAvailable          bool
	Rating               float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CategoryExpertise is a technician's historical record for one category.
type CategoryExpertise struct {
	TechnicianNIP        string
	CategoryID           int64
	Level                ExpertiseLevel
	SuccessRate          float64
	AvgResolutionMinutes int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TechnicianSnapshot is the read-only directory view handed to the
// assignment selector: a technician annotated with live workload and,
// when recorded, expertise for the category being assigned. Snapshots
// may be seconds stale; capacity is re-validated at commit time.
type TechnicianSnapshot struct {
	NIP                  string
	Name                 string
	SkillLevel           ExpertiseLevel
	MaxConcurrentTickets int
	CurrentWorkload      int
	Rating               float64
	HasExpertise         bool
	ExpertiseLevel       ExpertiseLevel
	SuccessRate          float64
	AvgResolutionMinutes int
}
