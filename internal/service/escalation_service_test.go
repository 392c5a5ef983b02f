package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/mocks"
)

func overdueTicket(id int64) domain.Ticket {
	due := fixedNow.Add(-time.Hour)
	return domain.Ticket{
		ID:       id,
		Number:   "TK-20260310-AB12",
		Status:   domain.TicketStatusInProgress,
		Priority: domain.TicketPriorityHigh,
		DueAt:    &due,
	}
}

func TestSweepOverdue(t *testing.T) {
	t.Run("escalates every overdue ticket once", func(t *testing.T) {
		tickets := new(mocks.TicketRepository)
		history := new(mocks.TicketHistoryRepository)
		recorder := &eventRecorder{}
		svc := NewEscalationService(tickets, history, recorder, zap.NewNop())

		tickets.On("ListOverdue", mock.Anything, fixedNow).Return([]domain.Ticket{
			overdueTicket(1), overdueTicket(2),
		}, nil)
		tickets.On("MarkEscalated", mock.Anything, int64(1)).Return(true, nil)
		tickets.On("MarkEscalated", mock.Anything, int64(2)).Return(true, nil)
		history.On("Create", mock.Anything, mock.MatchedBy(func(entry *domain.TicketHistory) bool {
			return entry.ChangeType == domain.ChangeTypeEscalation &&
				entry.ActorType == domain.ActorTypeSystem
		})).Return(nil).Twice()

		escalated, err := svc.SweepOverdue(context.Background(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, escalated)
		assert.Equal(t, []events.EventType{events.EventTicketEscalated, events.EventTicketEscalated}, recorder.types())
		history.AssertExpectations(t)
	})

	t.Run("skips tickets another sweep already flagged", func(t *testing.T) {
		tickets := new(mocks.TicketRepository)
		history := new(mocks.TicketHistoryRepository)
		recorder := &eventRecorder{}
		svc := NewEscalationService(tickets, history, recorder, zap.NewNop())

		tickets.On("ListOverdue", mock.Anything, fixedNow).Return([]domain.Ticket{
			overdueTicket(1), overdueTicket(2),
		}, nil)
		tickets.On("MarkEscalated", mock.Anything, int64(1)).Return(false, nil)
		tickets.On("MarkEscalated", mock.Anything, int64(2)).Return(true, nil)
		history.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		escalated, err := svc.SweepOverdue(context.Background(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, escalated)
		assert.Len(t, recorder.types(), 1)
		history.AssertExpectations(t)
	})

	t.Run("a failing ticket never blocks the rest", func(t *testing.T) {
		tickets := new(mocks.TicketRepository)
		history := new(mocks.TicketHistoryRepository)
		recorder := &eventRecorder{}
		svc := NewEscalationService(tickets, history, recorder, zap.NewNop())

		tickets.On("ListOverdue", mock.Anything, fixedNow).Return([]domain.Ticket{
			overdueTicket(1), overdueTicket(2),
		}, nil)
		tickets.On("MarkEscalated", mock.Anything, int64(1)).Return(false, errors.New("db error"))
		tickets.On("MarkEscalated", mock.Anything, int64(2)).Return(true, nil)
		history.On("Create", mock.Anything, mock.Anything).Return(nil)

		escalated, err := svc.SweepOverdue(context.Background(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, escalated)
	})

	t.Run("empty queue sweeps cleanly", func(t *testing.T) {
		tickets := new(mocks.TicketRepository)
		history := new(mocks.TicketHistoryRepository)
		svc := NewEscalationService(tickets, history, &eventRecorder{}, zap.NewNop())

		tickets.On("ListOverdue", mock.Anything, fixedNow).Return([]domain.Ticket{}, nil)

		escalated, err := svc.SweepOverdue(context.Background(), fixedNow)
		require.NoError(t, err)
		assert.Empty(t, escalated)
	})

	t.Run("listing failure is returned", func(t *testing.T) {
		tickets := new(mocks.TicketRepository)
		history := new(mocks.TicketHistoryRepository)
		svc := NewEscalationService(tickets, history, &eventRecorder{}, zap.NewNop())

		tickets.On("ListOverdue", mock.Anything, fixedNow).Return(nil, errors.New("db down"))

		_, err := svc.SweepOverdue(context.Background(), fixedNow)
		require.Error(t, err)
	})
}
