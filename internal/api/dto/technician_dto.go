package dto

import (
	"time"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// TechnicianResponse is the directory representation of a technician.
type TechnicianResponse struct {
	NIP                  string                  `json:"nip"`
	Name                 string                  `json:"name"`
	Email                string                  `json:"email"`
	Status               domain.TechnicianStatus `json:"status"`
	SkillLevel           domain.ExpertiseLevel   `json:"skill_level"`
	MaxConcurrentTickets int                     `json:"max_concurrent_tickets"`
	IsAvailable          bool                    `json:"is_available"`
	Rating               float64                 `json:"rating"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// TechnicianDetailResponse adds the live workload and per-category
// track record to the directory view.
type TechnicianDetailResponse struct {
	TechnicianResponse
	CurrentWorkload int                 `json:"current_workload"`
	Expertise       []ExpertiseResponse `json:"expertise"`
}

// ExpertiseResponse is one category's track record for a technician.
type ExpertiseResponse struct {
	CategoryID           int64                 `json:"category_id"`
	Level                domain.ExpertiseLevel `json:"level"`
	SuccessRate          float64               `json:"success_rate"`
	AvgResolutionMinutes int                   `json:"avg_resolution_minutes"`
}

// CandidateResponse is an assignment candidate as the selector sees it.
type CandidateResponse struct {
	NIP                  string                `json:"nip"`
	Name                 string                `json:"name"`
	SkillLevel           domain.ExpertiseLevel `json:"skill_level"`
	MaxConcurrentTickets int                   `json:"max_concurrent_tickets"`
	CurrentWorkload      int                   `json:"current_workload"`
	HasExpertise         bool                  `json:"has_expertise"`
	ExpertiseLevel       domain.ExpertiseLevel `json:"expertise_level"`
	SuccessRate          float64               `json:"success_rate"`
	AvgResolutionMinutes int                   `json:"avg_resolution_minutes"`
}
