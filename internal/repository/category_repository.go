package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// CategoryRepository reads categories and recomputes derived stats.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.Category, error)
	// Stats computes the derived aggregates for a category directly
	// from ticket rows. Nothing stores these counters.
	Stats(ctx context.Context, id int64) (*domain.CategoryStats, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	const query = `
        SELECT id, application_id, name, default_priority, sla_hours, is_active, created_at, updated_at
        FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.ApplicationID,
		&cat.Name,
		&cat.DefaultPriority,
		&cat.SLAHours,
		&cat.IsActive,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Category, error) {
	const query = `
        SELECT id, application_id, name, default_priority, sla_hours, is_active, created_at, updated_at
        FROM categories WHERE application_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(
			&cat.ID,
			&cat.ApplicationID,
			&cat.Name,
			&cat.DefaultPriority,
			&cat.SLAHours,
			&cat.IsActive,
			&cat.CreatedAt,
			&cat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Stats(ctx context.Context, id int64) (*domain.CategoryStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status IN ('RESOLVED','CLOSED')),
               COALESCE(AVG(resolution_minutes) FILTER (WHERE resolution_minutes IS NOT NULL), 0)::INT,
               COALESCE(AVG(CASE WHEN rating IS NOT NULL THEN (rating >= 3)::INT END), 0)
        FROM tickets WHERE category_id=$1`
	stats := domain.CategoryStats{CategoryID: id}
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&stats.TicketCount,
		&stats.ResolvedCount,
		&stats.AvgResolutionMinutes,
		&stats.SuccessRate,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
