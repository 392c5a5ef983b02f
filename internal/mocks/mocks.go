// Package mocks provides hand-written testify mocks for repository and
// event interfaces used across service tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/repository"
)

// TicketRepository mocks repository.TicketRepository.
type TicketRepository struct {
	mock.Mock
}

func (m *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	args := m.Called(ctx, number)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) UpdateGuarded(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) error {
	args := m.Called(ctx, ticket, expectedStatus)
	return args.Error(0)
}

func (m *TicketRepository) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if tickets, ok := args.Get(0).([]domain.Ticket); ok {
		return tickets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	args := m.Called(ctx, now)
	if tickets, ok := args.Get(0).([]domain.Ticket); ok {
		return tickets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) MarkEscalated(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *TicketRepository) CountActiveByTechnician(ctx context.Context, nip string) (int, error) {
	args := m.Called(ctx, nip)
	return args.Int(0), args.Error(1)
}

func (m *TicketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	args := m.Called(ctx)
	if counts, ok := args.Get(0).(map[domain.TicketStatus]int); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) CountEscalatedActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// TicketHistoryRepository mocks repository.TicketHistoryRepository.
type TicketHistoryRepository struct {
	mock.Mock
}

func (m *TicketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *TicketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.TicketHistory, error) {
	args := m.Called(ctx, ticketID, limit, offset)
	if entries, ok := args.Get(0).([]domain.TicketHistory); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// CategoryRepository mocks repository.CategoryRepository.
type CategoryRepository struct {
	mock.Mock
}

func (m *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if cat, ok := args.Get(0).(*domain.Category); ok {
		return cat, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CategoryRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Category, error) {
	args := m.Called(ctx, applicationID)
	if cats, ok := args.Get(0).([]domain.Category); ok {
		return cats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CategoryRepository) Stats(ctx context.Context, id int64) (*domain.CategoryStats, error) {
	args := m.Called(ctx, id)
	if stats, ok := args.Get(0).(*domain.CategoryStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

// ApplicationRepository mocks repository.ApplicationRepository.
type ApplicationRepository struct {
	mock.Mock
}

func (m *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if app, ok := args.Get(0).(*domain.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

// TechnicianRepository mocks repository.TechnicianRepository.
type TechnicianRepository struct {
	mock.Mock
}

func (m *TechnicianRepository) GetByNIP(ctx context.Context, nip string) (*domain.Technician, error) {
	args := m.Called(ctx, nip)
	if tech, ok := args.Get(0).(*domain.Technician); ok {
		return tech, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TechnicianRepository) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	args := m.Called(ctx, filter)
	if technicians, ok := args.Get(0).([]domain.Technician); ok {
		return technicians, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TechnicianRepository) ListExpertise(ctx context.Context, nip string) ([]domain.CategoryExpertise, error) {
	args := m.Called(ctx, nip)
	if expertise, ok := args.Get(0).([]domain.CategoryExpertise); ok {
		return expertise, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TechnicianRepository) CandidatesFor(ctx context.Context, categoryID int64) ([]domain.TechnicianSnapshot, error) {
	args := m.Called(ctx, categoryID)
	if snapshots, ok := args.Get(0).([]domain.TechnicianSnapshot); ok {
		return snapshots, args.Error(1)
	}
	return nil, args.Error(1)
}

// Dispatcher mocks events.Dispatcher.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *Dispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	m.Called(eventType, handler)
}
