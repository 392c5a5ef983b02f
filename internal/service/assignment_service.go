package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// AssignmentService picks the best technician for a ticket. It never
// mutates state; callers apply the result through the lifecycle
// service.
type AssignmentService struct {
	technicians repository.TechnicianRepository
	logger      *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(technicians repository.TechnicianRepository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{technicians: technicians, logger: logger}
}

var expertiseWeight = map[domain.ExpertiseLevel]float64{
	domain.ExpertiseNone:         0,
	domain.ExpertiseBeginner:     1,
	domain.ExpertiseIntermediate: 2,
	domain.ExpertiseAdvanced:     3,
	domain.ExpertiseExpert:       4,
}

// candidateScore combines expertise, track record and spare capacity.
func candidateScore(snap domain.TechnicianSnapshot) float64 {
	var normalizedWorkload float64
	if snap.MaxConcurrentTickets > 0 {
		normalizedWorkload = float64(snap.CurrentWorkload) / float64(snap.MaxConcurrentTickets)
	}
	return expertiseWeight[snap.ExpertiseLevel]*0.5 + snap.SuccessRate*0.3 - normalizedWorkload*0.2
}

// SelectBestTechnician returns the NIP of the highest-scoring
// candidate, or ok=false when the list is empty. Candidates with a
// recorded expertise for the ticket's category are preferred; when
// none have one, the full list competes. The ordering is total: ties
// on score break by lowest current workload, then lexicographically
// smallest NIP, so repeated calls with the same input pick the same
// technician.
func (s *AssignmentService) SelectBestTechnician(ticket *domain.Ticket, candidates []domain.TechnicianSnapshot) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	pool := make([]domain.TechnicianSnapshot, 0, len(candidates))
	for _, snap := range candidates {
		if snap.HasExpertise {
			pool = append(pool, snap)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, candidates...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := candidateScore(pool[i]), candidateScore(pool[j])
		if si != sj {
			return si > sj
		}
		if pool[i].CurrentWorkload != pool[j].CurrentWorkload {
			return pool[i].CurrentWorkload < pool[j].CurrentWorkload
		}
		return pool[i].NIP < pool[j].NIP
	})
	return pool[0].NIP, true
}

// FindBestTechnician queries the directory for placeable candidates
// and runs the selector over them. ok=false means nobody qualifies,
// which is a valid outcome, not an error.
func (s *AssignmentService) FindBestTechnician(ctx context.Context, ticket *domain.Ticket) (string, bool, error) {
	candidates, err := s.technicians.CandidatesFor(ctx, ticket.CategoryID)
	if err != nil {
		return "", false, apperrors.MapError(err)
	}
	nip, ok := s.SelectBestTechnician(ticket, candidates)
	if !ok {
		s.logger.Info("no assignable technician",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int64("category_id", ticket.CategoryID))
	}
	return nip, ok, nil
}

// Candidates exposes the directory snapshot for a category, for the
// admin preview endpoint.
func (s *AssignmentService) Candidates(ctx context.Context, categoryID int64) ([]domain.TechnicianSnapshot, error) {
	snaps, err := s.technicians.CandidatesFor(ctx, categoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return snaps, nil
}
