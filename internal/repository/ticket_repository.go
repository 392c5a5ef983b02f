package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// ErrStatusConflict signals a lost optimistic-concurrency race: the
// ticket moved away from the expected status between read and write.
var ErrStatusConflict = errors.New("ticket status changed concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID   *string
	ApplicationID *int64
	CategoryID    *int64
	TechnicianNIP *string
	Statuses      []domain.TicketStatus
	Priorities    []domain.TicketPriority
	Escalated     *bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	// UpdateGuarded writes the ticket conditionally on its stored
	// status still being expectedStatus. A lost race returns
	// ErrStatusConflict; a missing row returns pgx.ErrNoRows.
	UpdateGuarded(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListOverdue returns tickets past due_at at the given instant that
	// are neither settled nor already escalated.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
	// MarkEscalated flips is_escalated from false to true. It reports
	// false when another sweep got there first.
	MarkEscalated(ctx context.Context, id int64) (bool, error)
	// CountActiveByTechnician computes live workload for a technician.
	CountActiveByTechnician(ctx context.Context, nip string) (int, error)
	// CountByStatus groups all tickets by current status.
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
	// CountEscalatedActive counts escalated tickets that are not yet settled.
	CountEscalatedActive(ctx context.Context) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, number, requester_id, application_id, category_id, technician_nip,
               title, description, status, priority, due_at, first_response_at, resolved_at,
               closed_at, resolution_minutes, is_escalated, rating, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, requester_id, application_id, category_id, technician_nip,
            title, description, status, priority, due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.RequesterID,
		ticket.ApplicationID,
		ticket.CategoryID,
		ticket.TechnicianNIP,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.DueAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) UpdateGuarded(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET technician_nip=$1, status=$2, priority=$3, due_at=$4,
            first_response_at=$5, resolved_at=$6, closed_at=$7, resolution_minutes=$8,
            is_escalated=$9, rating=$10, updated_at=NOW()
        WHERE id=$11 AND status=$12`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.TechnicianNIP,
		ticket.Status,
		ticket.Priority,
		ticket.DueAt,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ResolutionMinutes,
		ticket.IsEscalated,
		ticket.Rating,
		ticket.ID,
		expectedStatus,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish a missing row from a lost race.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.ApplicationID != nil {
		args = append(args, *filter.ApplicationID)
		clauses = append(clauses, fmt.Sprintf("application_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.TechnicianNIP != nil {
		args = append(args, *filter.TechnicianNIP)
		clauses = append(clauses, fmt.Sprintf("technician_nip=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Escalated != nil {
		args = append(args, *filter.Escalated)
		clauses = append(clauses, fmt.Sprintf("is_escalated=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE due_at IS NOT NULL AND due_at < $1
          AND status NOT IN ('RESOLVED','CLOSED','CANCELLED')
          AND is_escalated = FALSE
        ORDER BY due_at ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) MarkEscalated(ctx context.Context, id int64) (bool, error) {
	const query = `
        UPDATE tickets SET is_escalated=TRUE, updated_at=NOW()
        WHERE id=$1 AND is_escalated=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) CountActiveByTechnician(ctx context.Context, nip string) (int, error) {
	query := fmt.Sprintf(`
        SELECT COUNT(*) FROM tickets
        WHERE technician_nip=$1 AND status IN (%s)`, ActiveStatusSQL())
	var count int
	if err := r.pool.QueryRow(ctx, query, nip).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ActiveStatusSQL renders the workload-bearing statuses as a SQL IN
// list, so every workload query counts the same states.
func ActiveStatusSQL() string {
	parts := make([]string, len(domain.ActiveStatuses))
	for i, status := range domain.ActiveStatuses {
		parts[i] = "'" + string(status) + "'"
	}
	return strings.Join(parts, ",")
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountEscalatedActive(ctx context.Context) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE is_escalated=TRUE AND status NOT IN ('RESOLVED','CLOSED','CANCELLED')`
	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.RequesterID,
		&ticket.ApplicationID,
		&ticket.CategoryID,
		&ticket.TechnicianNIP,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.DueAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.ResolutionMinutes,
		&ticket.IsEscalated,
		&ticket.Rating,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
