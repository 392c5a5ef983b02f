package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// TechnicianFilter defines query params for technician listing.
type TechnicianFilter struct {
	Status      *domain.TechnicianStatus
	IsAvailable *bool
	Limit       int
	Offset      int
}

// TechnicianRepository is the read side of the technician directory.
// Workload figures are computed live from ticket rows on every read;
// nothing here mutates technician state.
type TechnicianRepository interface {
	GetByNIP(ctx context.Context, nip string) (*domain.Technician, error)
	List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error)
	// ListExpertise returns the per-category track record of one
	// technician, ordered by category.
	ListExpertise(ctx context.Context, nip string) ([]domain.CategoryExpertise, error)
	// CandidatesFor returns active, available technicians with spare
	// capacity, each annotated with their expertise record for the
	// category when one exists.
	CandidatesFor(ctx context.Context, categoryID int64) ([]domain.TechnicianSnapshot, error)
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

func (r *technicianRepository) GetByNIP(ctx context.Context, nip string) (*domain.Technician, error) {
	const query = `
        SELECT nip, name, email, status, skill_level, max_concurrent_tickets, is_available, rating, created_at, updated_at
        FROM technicians WHERE nip=$1`
	var tech domain.Technician
	if err := r.pool.QueryRow(ctx, query, nip).Scan(
		&tech.NIP,
		&tech.Name,
		&tech.Email,
		&tech.Status,
		&tech.SkillLevel,
		&tech.MaxConcurrentTickets,
		&tech.IsAvailable,
		&tech.Rating,
		&tech.CreatedAt,
		&tech.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepository) List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error) {
	query := `
        SELECT nip, name, email, status, skill_level, max_concurrent_tickets, is_available, rating, created_at, updated_at
        FROM technicians`
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.IsAvailable != nil {
		args = append(args, *filter.IsAvailable)
		clauses = append(clauses, fmt.Sprintf("is_available=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY nip ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(
			&tech.NIP,
			&tech.Name,
			&tech.Email,
			&tech.Status,
			&tech.SkillLevel,
			&tech.MaxConcurrentTickets,
			&tech.IsAvailable,
			&tech.Rating,
			&tech.CreatedAt,
			&tech.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tech)
	}
	return result, rows.Err()
}

func (r *technicianRepository) ListExpertise(ctx context.Context, nip string) ([]domain.CategoryExpertise, error) {
	const query = `
        SELECT technician_nip, category_id, level, success_rate, avg_resolution_minutes, created_at, updated_at
        FROM technician_expertise WHERE technician_nip=$1
        ORDER BY category_id ASC`
	rows, err := r.pool.Query(ctx, query, nip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryExpertise
	for rows.Next() {
		var exp domain.CategoryExpertise
		if err := rows.Scan(
			&exp.TechnicianNIP,
			&exp.CategoryID,
			&exp.Level,
			&exp.SuccessRate,
			&exp.AvgResolutionMinutes,
			&exp.CreatedAt,
			&exp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, exp)
	}
	return result, rows.Err()
}

func (r *technicianRepository) CandidatesFor(ctx context.Context, categoryID int64) ([]domain.TechnicianSnapshot, error) {
	// Workload is a live aggregate over ticket rows, never a cached
	// counter. The capacity check happens here so the selector only
	// ever sees placeable candidates.
	query := fmt.Sprintf(`
        SELECT t.nip, t.name, t.skill_level, t.max_concurrent_tickets, t.rating,
               COALESCE(w.workload, 0) AS current_workload,
               e.level, e.success_rate, e.avg_resolution_minutes
        FROM technicians t
        LEFT JOIN LATERAL (
            SELECT COUNT(*) AS workload FROM tickets tk
            WHERE tk.technician_nip = t.nip
              AND tk.status IN (%s)
        ) w ON TRUE
        LEFT JOIN technician_expertise e
            ON e.technician_nip = t.nip AND e.category_id = $1
        WHERE t.status = 'ACTIVE'
          AND t.is_available = TRUE
          AND COALESCE(w.workload, 0) < t.max_concurrent_tickets
        ORDER BY t.nip ASC`, ActiveStatusSQL())
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows pgx.Rows) ([]domain.TechnicianSnapshot, error) {
	var result []domain.TechnicianSnapshot
	for rows.Next() {
		var (
			snap        domain.TechnicianSnapshot
			level       *domain.ExpertiseLevel
			successRate *float64
			avgMinutes  *int
		)
		if err := rows.Scan(
			&snap.NIP,
			&snap.Name,
			&snap.SkillLevel,
			&snap.MaxConcurrentTickets,
			&snap.Rating,
			&snap.CurrentWorkload,
			&level,
			&successRate,
			&avgMinutes,
		); err != nil {
			return nil, err
		}
		if level != nil {
			snap.HasExpertise = true
			snap.ExpertiseLevel = *level
			if successRate != nil {
				snap.SuccessRate = *successRate
			}
			if avgMinutes != nil {
				snap.AvgResolutionMinutes = *avgMinutes
			}
		} else {
			snap.ExpertiseLevel = domain.ExpertiseNone
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}
