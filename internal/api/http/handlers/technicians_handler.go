package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/krakatau-dev/helpdesk/internal/api/dto"
	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	"github.com/krakatau-dev/helpdesk/internal/service"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// TechniciansHandler exposes the technician directory.
type TechniciansHandler struct {
	technicians *service.TechnicianService
	assignments *service.AssignmentService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicians *service.TechnicianService, assignments *service.AssignmentService) *TechniciansHandler {
	return &TechniciansHandler{technicians: technicians, assignments: assignments}
}

// List GET /technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	filter := repository.TechnicianFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TechnicianStatus(statusStr)
		filter.Status = &status
	}
	if availStr := c.Query("available"); availStr != "" {
		available := availStr == "true" || availStr == "1"
		filter.IsAvailable = &available
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	technicians, err := h.technicians.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, technicianResponse(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /technicians/:nip.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	nip := c.Params("nip")
	if nip == "" {
		return apperrors.NewValidationError("nip required", nil)
	}
	detail, err := h.technicians.GetByNIP(c.Context(), nip)
	if err != nil {
		return err
	}
	expertise := make([]dto.ExpertiseResponse, 0, len(detail.Expertise))
	for _, exp := range detail.Expertise {
		expertise = append(expertise, dto.ExpertiseResponse{
			CategoryID:           exp.CategoryID,
			Level:                exp.Level,
			SuccessRate:          exp.SuccessRate,
			AvgResolutionMinutes: exp.AvgResolutionMinutes,
		})
	}
	return c.JSON(fiber.Map{"data": dto.TechnicianDetailResponse{
		TechnicianResponse: technicianResponse(&detail.Technician),
		CurrentWorkload:    detail.CurrentWorkload,
		Expertise:          expertise,
	}})
}

// Candidates GET /categories/:id/candidates. Shows the assignable pool
// for a category the way the selector sees it.
func (h *TechniciansHandler) Candidates(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		return apperrors.NewValidationError("invalid category id", nil)
	}

	candidates, err := h.assignments.Candidates(c.Context(), categoryID)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, dto.CandidateResponse{
			NIP:                  candidate.NIP,
			Name:                 candidate.Name,
			SkillLevel:           candidate.SkillLevel,
			MaxConcurrentTickets: candidate.MaxConcurrentTickets,
			CurrentWorkload:      candidate.CurrentWorkload,
			HasExpertise:         candidate.HasExpertise,
			ExpertiseLevel:       candidate.ExpertiseLevel,
			SuccessRate:          candidate.SuccessRate,
			AvgResolutionMinutes: candidate.AvgResolutionMinutes,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// BestCandidate GET /categories/:id/candidates/best. Previews who the
// selector would pick for a ticket in this category right now.
func (h *TechniciansHandler) BestCandidate(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		return apperrors.NewValidationError("invalid category id", nil)
	}

	nip, found, err := h.assignments.FindBestTechnician(c.Context(), &domain.Ticket{CategoryID: categoryID})
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(fiber.Map{"data": fiber.Map{"found": false}})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"found": true, "technician_nip": nip}})
}

func technicianResponse(technician *domain.Technician) dto.TechnicianResponse {
	return dto.TechnicianResponse{
		NIP:                  technician.NIP,
		Name:                 technician.Name,
		Email:                technician.Email,
		Status:               technician.Status,
		SkillLevel:           technician.SkillLevel,
		MaxConcurrentTickets: technician.MaxConcurrentTickets,
		IsAvailable:          technician.IsAvailable,
		Rating:               technician.Rating,
		CreatedAt:            technician.CreatedAt,
		UpdatedAt:            technician.UpdatedAt,
	}
}
