package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// EscalationService sweeps overdue tickets and flags them. Escalation
// is an orthogonal flag, not a lifecycle transition: an overdue ticket
// may still legitimately be mid-resolution, so its status never
// changes here.
type EscalationService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewEscalationService creates the service.
func NewEscalationService(tickets repository.TicketRepository, history repository.TicketHistoryRepository, dispatcher events.Dispatcher, logger *zap.Logger) *EscalationService {
	return &EscalationService{
		tickets:    tickets,
		history:    history,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SweepOverdue flags every overdue, not-yet-escalated ticket and
// returns the ids it escalated. The flag flip is a compare-and-swap on
// is_escalated, so overlapping sweeps are safe: whichever run loses
// the race simply skips the ticket. A failure on one ticket is logged
// and never blocks escalation of the rest.
func (s *EscalationService) SweepOverdue(ctx context.Context, now time.Time) ([]int64, error) {
	overdue, err := s.tickets.ListOverdue(ctx, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	escalated := make([]int64, 0, len(overdue))
	for i := range overdue {
		ticket := &overdue[i]
		flipped, err := s.tickets.MarkEscalated(ctx, ticket.ID)
		if err != nil {
			s.logger.Error("failed to escalate ticket",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if !flipped {
			// Another sweep got there first.
			continue
		}

		entry := &domain.TicketHistory{
			TicketID:   ticket.ID,
			ActorType:  domain.SystemActor.Type,
			ActorID:    domain.SystemActor.ID,
			ChangeType: domain.ChangeTypeEscalation,
			OldValue:   map[string]any{"is_escalated": false},
			NewValue:   map[string]any{"is_escalated": true},
			Notes:      "SLA deadline exceeded",
		}
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Error("failed to append escalation history",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}

		s.publishEscalated(ctx, ticket)
		escalated = append(escalated, ticket.ID)
	}

	if len(escalated) > 0 {
		s.logger.Info("escalation sweep complete",
			zap.Int("overdue", len(overdue)),
			zap.Int("escalated", len(escalated)))
	}
	return escalated, nil
}

func (s *EscalationService) publishEscalated(ctx context.Context, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventTicketEscalated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Actor:        domain.SystemActor,
		Timestamp:    time.Now().UTC(),
		Payload: events.TicketEscalatedPayload{
			Status:        ticket.Status,
			DueAt:         ticket.DueAt,
			TechnicianNIP: ticket.TechnicianNIP,
		},
	})
}
