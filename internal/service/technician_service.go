package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// TechnicianService exposes directory reads for admin endpoints.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	tickets     repository.TicketRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(technicians repository.TechnicianRepository, tickets repository.TicketRepository) *TechnicianService {
	return &TechnicianService{technicians: technicians, tickets: tickets}
}

// TechnicianDetail is a technician plus the live workload aggregate
// and the per-category track record.
type TechnicianDetail struct {
	Technician      domain.Technician
	CurrentWorkload int
	Expertise       []domain.CategoryExpertise
}

// GetByNIP fetches one technician with live workload and expertise.
func (s *TechnicianService) GetByNIP(ctx context.Context, nip string) (*TechnicianDetail, error) {
	tech, err := s.technicians.GetByNIP(ctx, nip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"nip": nip})
		}
		return nil, apperrors.MapError(err)
	}
	workload, err := s.tickets.CountActiveByTechnician(ctx, nip)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	expertise, err := s.technicians.ListExpertise(ctx, nip)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TechnicianDetail{Technician: *tech, CurrentWorkload: workload, Expertise: expertise}, nil
}

// List returns technicians matching the filter.
func (s *TechnicianService) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	technicians, err := s.technicians.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return technicians, nil
}
