package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	"github.com/krakatau-dev/helpdesk/internal/sla"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// LifecycleService owns the authoritative status of tickets. Every
// mutation goes through here: transitions are validated against the
// lifecycle table, written with a compare-and-swap on the previous
// status, recorded in the history trail and published as events.
type LifecycleService struct {
	tickets      repository.TicketRepository
	history      repository.TicketHistoryRepository
	categories   repository.CategoryRepository
	applications repository.ApplicationRepository
	technicians  repository.TechnicianRepository
	assigner     *AssignmentService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// LifecycleDependencies bundles collaborators for the service.
type LifecycleDependencies struct {
	TicketRepo      repository.TicketRepository
	HistoryRepo     repository.TicketHistoryRepository
	CategoryRepo    repository.CategoryRepository
	ApplicationRepo repository.ApplicationRepository
	TechnicianRepo  repository.TechnicianRepository
	Assigner        *AssignmentService
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		tickets:      deps.TicketRepo,
		history:      deps.HistoryRepo,
		categories:   deps.CategoryRepo,
		applications: deps.ApplicationRepo,
		technicians:  deps.TechnicianRepo,
		assigner:     deps.Assigner,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		now:          time.Now,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ApplicationID int64
	CategoryID    int64
	Title         string
	Description   string
	Priority      domain.TicketPriority
}

// CreateTicket validates the request, stamps the SLA due date and
// persists the ticket, then synchronously attempts auto-assignment.
// When a candidate exists the ticket leaves this call already
// ASSIGNED; otherwise it stays OPEN for a later manual assignment.
func (s *LifecycleService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if actor.ID == "" {
		return nil, apperrors.NewValidationError("requester required", nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError("category inactive", map[string]any{"category_id": category.ID})
	}
	if category.ApplicationID != input.ApplicationID {
		return nil, apperrors.NewValidationError("category does not belong to application", map[string]any{
			"category_id":    category.ID,
			"application_id": input.ApplicationID,
		})
	}
	app, err := s.applications.GetByID(ctx, input.ApplicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"application_id": input.ApplicationID})
		}
		return nil, apperrors.MapError(err)
	}
	if !app.IsActive {
		return nil, apperrors.NewValidationError("application inactive", map[string]any{"application_id": app.ID})
	}

	priority := input.Priority
	if priority == "" {
		priority = category.DefaultPriority
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	createdAt := s.now().UTC()
	dueAt := sla.Deadline(priority, category.SLAHours, createdAt)

	ticket := &domain.Ticket{
		Number:        generateTicketNumber(createdAt),
		RequesterID:   actor.ID,
		ApplicationID: input.ApplicationID,
		CategoryID:    input.CategoryID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.TicketStatusOpen,
		Priority:      priority,
		DueAt:         &dueAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Actor:        actor,
		Payload: events.TicketCreatedPayload{
			ApplicationID: ticket.ApplicationID,
			CategoryID:    ticket.CategoryID,
			Priority:      ticket.Priority,
			Title:         ticket.Title,
			DueAt:         ticket.DueAt,
		},
	})

	// Best effort: creation succeeds even when nobody can take the
	// ticket right now.
	nip, found, err := s.assigner.FindBestTechnician(ctx, ticket)
	if err != nil {
		s.logger.Warn("auto-assignment lookup failed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return ticket, nil
	}
	if !found {
		return ticket, nil
	}
	// The selector scored a directory snapshot that may already be
	// stale; re-read the live workload before committing so the ticket
	// never lands on a technician at capacity.
	if err := s.checkCapacity(ctx, nip); err != nil {
		s.logger.Warn("auto-assignment skipped",
			zap.Int64("ticket_id", ticket.ID), zap.String("nip", nip), zap.Error(err))
		return ticket, nil
	}
	assigned, err := s.applyAssignment(ctx, domain.SystemActor, ticket, nip, true, "auto-assigned on create")
	if err != nil {
		s.logger.Warn("auto-assignment failed",
			zap.Int64("ticket_id", ticket.ID), zap.String("nip", nip), zap.Error(err))
		return ticket, nil
	}
	return assigned, nil
}

// TransitionTo applies a status change after validating it against the
// lifecycle table. Illegal edges fail with INVALID_TRANSITION and
// leave the stored status untouched; a lost write race fails with
// CONFLICT and the caller retries with fresh state.
func (s *LifecycleService) TransitionTo(ctx context.Context, actor domain.Actor, ticketID int64, newStatus domain.TicketStatus, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if !domain.CanTransition(oldStatus, newStatus) {
		return nil, apperrors.NewInvalidTransition(string(oldStatus), string(newStatus))
	}
	if oldStatus == domain.TicketStatusResolved && newStatus == domain.TicketStatusOpen {
		if err := s.checkReopenAllowed(actor, ticket); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	ticket.Status = newStatus
	s.stampTimestamps(ticket, oldStatus, newStatus, now)

	if err := s.writeGuarded(ctx, ticket, oldStatus); err != nil {
		return nil, err
	}
	s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, newStatus, notes)

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Actor:        actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Notes:     notes,
		},
	})
	switch newStatus {
	case domain.TicketStatusResolved:
		s.publishResolved(ctx, actor, ticket)
	case domain.TicketStatusClosed:
		s.publishEvent(ctx, events.Event{
			Type:         events.EventTicketClosed,
			TicketID:     ticket.ID,
			TicketNumber: ticket.Number,
			Actor:        actor,
			Payload:      events.TicketClosedPayload{ClosedAt: *ticket.ClosedAt},
		})
	}
	return ticket, nil
}

// AssignToTechnician is the manual override: admins may place work on
// a technician regardless of the capacity soft cap. The ticket must
// still be OPEN or ASSIGNED and the technician ACTIVE.
func (s *LifecycleService) AssignToTechnician(ctx context.Context, actor domain.Actor, ticketID int64, nip, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusOpen && ticket.Status != domain.TicketStatusAssigned {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusAssigned))
	}
	if err := s.checkTechnicianActive(ctx, nip); err != nil {
		return nil, err
	}
	return s.applyAssignment(ctx, actor, ticket, nip, false, notes)
}

// Reassign moves a ticket to a different technician. Legal for any
// ticket not yet resolved, closed or cancelled; both the old and the
// new technician are recorded in history.
func (s *LifecycleService) Reassign(ctx context.Context, actor domain.Actor, ticketID int64, nip, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if domain.IsSettled(ticket.Status) {
		return nil, apperrors.NewConflict("ticket can no longer be reassigned", map[string]any{
			"ticket_id": ticket.ID,
			"status":    ticket.Status,
		})
	}
	if err := s.checkTechnicianActive(ctx, nip); err != nil {
		return nil, err
	}
	return s.applyAssignment(ctx, actor, ticket, nip, false, notes)
}

// SetRating records the requester's satisfaction score. Ratings are
// accepted only from the requester while the ticket is RESOLVED.
func (s *LifecycleService) SetRating(ctx context.Context, actor domain.Actor, ticketID int64, rating int) (*domain.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("only resolved tickets can be rated", map[string]any{"status": ticket.Status})
	}
	if actor.Type != domain.ActorTypeUser || actor.ID != ticket.RequesterID {
		return nil, apperrors.NewForbidden("only the requester can rate a ticket")
	}

	var oldRating any
	if ticket.Rating != nil {
		oldRating = *ticket.Rating
	}
	ticket.Rating = &rating
	if err := s.writeGuarded(ctx, ticket, domain.TicketStatusResolved); err != nil {
		return nil, err
	}
	s.recordHistory(ctx, actor, &domain.TicketHistory{
		TicketID:   ticket.ID,
		ChangeType: domain.ChangeTypeRating,
		OldValue:   map[string]any{"rating": oldRating},
		NewValue:   map[string]any{"rating": rating},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by numeric id.
func (s *LifecycleService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// GetTicketByNumber fetches a ticket by its human-facing number.
func (s *LifecycleService) GetTicketByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"number": number})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *LifecycleService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns the audit trail of a ticket.
func (s *LifecycleService) ListHistory(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *LifecycleService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// checkReopenAllowed gates the single backward edge: only the
// requester or a helpdesk admin may reopen a resolved ticket.
func (s *LifecycleService) checkReopenAllowed(actor domain.Actor, ticket *domain.Ticket) error {
	if actor.Type == domain.ActorTypeAdminHelpdesk {
		return nil
	}
	if actor.Type == domain.ActorTypeUser && actor.ID == ticket.RequesterID {
		return nil
	}
	return apperrors.NewForbidden("only the requester or a helpdesk admin can reopen a resolved ticket")
}

func (s *LifecycleService) checkTechnicianActive(ctx context.Context, nip string) error {
	tech, err := s.technicians.GetByNIP(ctx, nip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"nip": nip})
		}
		return apperrors.MapError(err)
	}
	if tech.Status != domain.TechnicianStatusActive {
		return apperrors.NewConflict("technician inactive", map[string]any{"nip": nip})
	}
	return nil
}

// checkCapacity re-validates a technician's capacity soft cap against
// the live workload aggregate. Only automatic placement calls this;
// manual admin placement bypasses the cap on purpose.
func (s *LifecycleService) checkCapacity(ctx context.Context, nip string) error {
	tech, err := s.technicians.GetByNIP(ctx, nip)
	if err != nil {
		return apperrors.MapError(err)
	}
	workload, err := s.tickets.CountActiveByTechnician(ctx, nip)
	if err != nil {
		return apperrors.MapError(err)
	}
	if tech.MaxConcurrentTickets > 0 && workload >= tech.MaxConcurrentTickets {
		return apperrors.NewConflict("technician at capacity", map[string]any{
			"nip":      nip,
			"workload": workload,
			"max":      tech.MaxConcurrentTickets,
		})
	}
	return nil
}

// stampTimestamps applies the timestamp rules for a transition. Each
// stamp is written at most once and never cleared, so the fields stay
// a monotonic historical record even across reopen.
func (s *LifecycleService) stampTimestamps(ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus, now time.Time) {
	if oldStatus == domain.TicketStatusOpen && newStatus != domain.TicketStatusOpen && ticket.FirstResponseAt == nil {
		firstResponse := now
		ticket.FirstResponseAt = &firstResponse
	}
	if newStatus == domain.TicketStatusResolved {
		if ticket.ResolvedAt == nil {
			resolvedAt := now
			ticket.ResolvedAt = &resolvedAt
		}
		if ticket.ResolutionMinutes == nil {
			minutes := int(ticket.ResolvedAt.Sub(ticket.CreatedAt).Minutes())
			ticket.ResolutionMinutes = &minutes
		}
	}
	if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		closedAt := now
		ticket.ClosedAt = &closedAt
	}
}

// applyAssignment sets the technician, moves the ticket to at least
// ASSIGNED, and emits history plus the assignment event.
func (s *LifecycleService) applyAssignment(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, nip string, auto bool, notes string) (*domain.Ticket, error) {
	oldStatus := ticket.Status
	oldNIP := ticket.TechnicianNIP

	ticket.TechnicianNIP = &nip
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusAssigned
		s.stampTimestamps(ticket, oldStatus, ticket.Status, s.now().UTC())
	}
	if err := s.writeGuarded(ctx, ticket, oldStatus); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, actor, &domain.TicketHistory{
		TicketID:   ticket.ID,
		ChangeType: domain.ChangeTypeAssignee,
		OldValue:   map[string]any{"technician_nip": derefOrNil(oldNIP)},
		NewValue:   map[string]any{"technician_nip": nip, "auto": auto},
		Notes:      notes,
	})
	if oldStatus != ticket.Status {
		s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, ticket.Status, notes)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketAssigned,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Actor:        actor,
		Payload: events.TicketAssignedPayload{
			OldTechnicianNIP: oldNIP,
			TechnicianNIP:    nip,
			Auto:             auto,
		},
	})
	return ticket, nil
}

func (s *LifecycleService) writeGuarded(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) error {
	err := s.tickets.UpdateGuarded(ctx, ticket, expectedStatus)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStatusConflict):
		return apperrors.NewConflict("ticket was modified concurrently, retry with fresh state", map[string]any{
			"ticket_id":       ticket.ID,
			"expected_status": expectedStatus,
		})
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	default:
		return apperrors.MapError(err)
	}
}

func (s *LifecycleService) publishResolved(ctx context.Context, actor domain.Actor, ticket *domain.Ticket) {
	compliance := sla.WithinSLA
	if category, err := s.categories.GetByID(ctx, ticket.CategoryID); err == nil && ticket.ResolvedAt != nil {
		compliance = sla.ComplianceStatus(ticket.CreatedAt, *ticket.ResolvedAt, ticket.Priority, category.SLAHours)
	}
	minutes := 0
	if ticket.ResolutionMinutes != nil {
		minutes = *ticket.ResolutionMinutes
	}
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketResolved,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Actor:        actor,
		Payload: events.TicketResolvedPayload{
			ResolutionMinutes: minutes,
			SLACompliance:     string(compliance),
		},
	})
}

func (s *LifecycleService) recordStatusChange(ctx context.Context, actor domain.Actor, ticketID int64, oldStatus, newStatus domain.TicketStatus, notes string) {
	s.recordHistory(ctx, actor, &domain.TicketHistory{
		TicketID:   ticketID,
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": oldStatus},
		NewValue:   map[string]any{"status": newStatus},
		Notes:      notes,
	})
}

// recordHistory appends an audit row. History failures are logged but
// never roll back an already committed transition.
func (s *LifecycleService) recordHistory(ctx context.Context, actor domain.Actor, entry *domain.TicketHistory) {
	entry.ActorType = actor.Type
	entry.ActorID = actor.ID
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("failed to append ticket history",
			zap.Int64("ticket_id", entry.TicketID),
			zap.String("change_type", string(entry.ChangeType)),
			zap.Error(err))
	}
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// generateTicketNumber builds the human-facing key, e.g.
// TK-20260831-4F2A. Uniqueness is backed by a unique index.
func generateTicketNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("TK-%s-%s", at.Format("20060102"), suffix)
}

func derefOrNil(val *string) any {
	if val == nil {
		return nil
	}
	return *val
}
