package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/mocks"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// eventRecorder captures published events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

type lifecycleFixture struct {
	tickets      *mocks.TicketRepository
	history      *mocks.TicketHistoryRepository
	categories   *mocks.CategoryRepository
	applications *mocks.ApplicationRepository
	technicians  *mocks.TechnicianRepository
	recorder     *eventRecorder
	svc          *LifecycleService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		tickets:      new(mocks.TicketRepository),
		history:      new(mocks.TicketHistoryRepository),
		categories:   new(mocks.CategoryRepository),
		applications: new(mocks.ApplicationRepository),
		technicians:  new(mocks.TechnicianRepository),
		recorder:     &eventRecorder{},
	}
	logger := zap.NewNop()
	f.svc = NewLifecycleService(LifecycleDependencies{
		TicketRepo:      f.tickets,
		HistoryRepo:     f.history,
		CategoryRepo:    f.categories,
		ApplicationRepo: f.applications,
		TechnicianRepo:  f.technicians,
		Assigner:        NewAssignmentService(f.technicians, logger),
		Dispatcher:      f.recorder,
		Logger:          logger,
	})
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func activeCategory() *domain.Category {
	return &domain.Category{
		ID:              10,
		ApplicationID:   1,
		Name:            "VPN Access",
		DefaultPriority: domain.TicketPriorityMedium,
		IsActive:        true,
	}
}

func activeApplication() *domain.Application {
	return &domain.Application{ID: 1, Name: "SIMPEG", IsActive: true}
}

func requester() domain.Actor {
	return domain.Actor{Type: domain.ActorTypeUser, ID: "user-1"}
}

func TestCreateTicket(t *testing.T) {
	input := TicketCreateInput{
		ApplicationID: 1,
		CategoryID:    10,
		Title:         "Cannot connect to VPN",
		Description:   "Timeout after login",
		Priority:      domain.TicketPriorityMedium,
	}

	t.Run("stays open when no technician qualifies", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).Run(func(args mock.Arguments) {
			ticket := args.Get(1).(*domain.Ticket)
			ticket.ID = 42
			ticket.CreatedAt = fixedNow
		}).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{}, nil)

		ticket, err := f.svc.CreateTicket(context.Background(), requester(), input)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.TechnicianNIP)
		require.NotNil(t, ticket.DueAt)
		assert.Equal(t, fixedNow.Add(24*time.Hour), *ticket.DueAt)
		assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.recorder.types())
	})

	t.Run("auto-assigns when a candidate exists", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).Run(func(args mock.Arguments) {
			ticket := args.Get(1).(*domain.Ticket)
			ticket.ID = 42
			ticket.CreatedAt = fixedNow
		}).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{
			snapshot("100", domain.ExpertiseExpert, true, 0, 5, 0.9),
		}, nil)
		f.technicians.On("GetByNIP", mock.Anything, "100").Return(&domain.Technician{
			NIP: "100", Status: domain.TechnicianStatusActive, MaxConcurrentTickets: 5,
		}, nil)
		f.tickets.On("CountActiveByTechnician", mock.Anything, "100").Return(0, nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.AnythingOfType("*domain.Ticket"), domain.TicketStatusOpen).Return(nil)
		f.history.On("Create", mock.Anything, mock.AnythingOfType("*domain.TicketHistory")).Return(nil)

		ticket, err := f.svc.CreateTicket(context.Background(), requester(), input)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
		require.NotNil(t, ticket.TechnicianNIP)
		assert.Equal(t, "100", *ticket.TechnicianNIP)
		assert.NotNil(t, ticket.FirstResponseAt)
		assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketAssigned}, f.recorder.types())
	})

	t.Run("stays open when the live workload contradicts a stale snapshot", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).Run(func(args mock.Arguments) {
			ticket := args.Get(1).(*domain.Ticket)
			ticket.ID = 42
			ticket.CreatedAt = fixedNow
		}).Return(nil)
		// The directory still shows a free slot, but by commit time the
		// technician is full.
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{
			snapshot("100", domain.ExpertiseExpert, true, 4, 5, 0.9),
		}, nil)
		f.technicians.On("GetByNIP", mock.Anything, "100").Return(&domain.Technician{
			NIP: "100", Status: domain.TechnicianStatusActive, MaxConcurrentTickets: 5,
		}, nil)
		f.tickets.On("CountActiveByTechnician", mock.Anything, "100").Return(5, nil)

		ticket, err := f.svc.CreateTicket(context.Background(), requester(), input)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.TechnicianNIP)
		f.tickets.AssertNotCalled(t, "UpdateGuarded", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.recorder.types())
	})

	t.Run("stays open when the capacity re-check errors", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{
			snapshot("100", domain.ExpertiseExpert, true, 0, 5, 0.9),
		}, nil)
		f.technicians.On("GetByNIP", mock.Anything, "100").Return(nil, pgx.ErrTxClosed)

		ticket, err := f.svc.CreateTicket(context.Background(), requester(), input)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	})

	t.Run("category SLA override drives the deadline", func(t *testing.T) {
		f := newLifecycleFixture()
		category := activeCategory()
		override := 2
		category.SLAHours = &override
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(category, nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{}, nil)

		urgent := input
		urgent.Priority = domain.TicketPriorityUrgent
		ticket, err := f.svc.CreateTicket(context.Background(), requester(), urgent)
		require.NoError(t, err)
		require.NotNil(t, ticket.DueAt)
		assert.Equal(t, fixedNow.Add(2*time.Hour), *ticket.DueAt)
	})

	t.Run("priority defaults from the category", func(t *testing.T) {
		f := newLifecycleFixture()
		category := activeCategory()
		category.DefaultPriority = domain.TicketPriorityHigh
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(category, nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{}, nil)

		noPriority := input
		noPriority.Priority = ""
		ticket, err := f.svc.CreateTicket(context.Background(), requester(), noPriority)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
		assert.Equal(t, fixedNow.Add(8*time.Hour), *ticket.DueAt)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		f := newLifecycleFixture()
		blank := input
		blank.Title = "   "
		_, err := f.svc.CreateTicket(context.Background(), requester(), blank)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(nil, pgx.ErrNoRows)
		_, err := f.svc.CreateTicket(context.Background(), requester(), input)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})

	t.Run("rejects inactive category", func(t *testing.T) {
		f := newLifecycleFixture()
		category := activeCategory()
		category.IsActive = false
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(category, nil)
		_, err := f.svc.CreateTicket(context.Background(), requester(), input)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("rejects category from another application", func(t *testing.T) {
		f := newLifecycleFixture()
		category := activeCategory()
		category.ApplicationID = 99
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(category, nil)
		_, err := f.svc.CreateTicket(context.Background(), requester(), input)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		bogus := input
		bogus.Priority = domain.TicketPriority("CRITICAL")
		_, err := f.svc.CreateTicket(context.Background(), requester(), bogus)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("creation survives an auto-assignment failure", func(t *testing.T) {
		f := newLifecycleFixture()
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)
		f.applications.On("GetByID", mock.Anything, int64(1)).Return(activeApplication(), nil)
		f.tickets.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.technicians.On("CandidatesFor", mock.Anything, int64(10)).Return(nil, pgx.ErrTxClosed)

		ticket, err := f.svc.CreateTicket(context.Background(), requester(), input)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	})
}

func existingTicket(status domain.TicketStatus) *domain.Ticket {
	nip := "100"
	due := fixedNow.Add(4 * time.Hour)
	return &domain.Ticket{
		ID:            42,
		Number:        "TK-20260310-AB12",
		RequesterID:   "user-1",
		ApplicationID: 1,
		CategoryID:    10,
		TechnicianNIP: &nip,
		Title:         "Cannot connect to VPN",
		Status:        status,
		Priority:      domain.TicketPriorityMedium,
		DueAt:         &due,
		CreatedAt:     fixedNow.Add(-3 * time.Hour),
	}
}

func TestTransitionTo(t *testing.T) {
	t.Run("rejects an illegal edge without writing", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)

		_, err := f.svc.TransitionTo(context.Background(), requester(), 42, domain.TicketStatusClosed, "")
		assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
		f.tickets.AssertNotCalled(t, "UpdateGuarded", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown ticket is NOT_FOUND", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(nil, pgx.ErrNoRows)

		_, err := f.svc.TransitionTo(context.Background(), requester(), 42, domain.TicketStatusResolved, "")
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})

	t.Run("resolving stamps resolution fields and publishes", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusInProgress).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.categories.On("GetByID", mock.Anything, int64(10)).Return(activeCategory(), nil)

		actor := domain.Actor{Type: domain.ActorTypeTechnician, ID: "100"}
		ticket, err := f.svc.TransitionTo(context.Background(), actor, 42, domain.TicketStatusResolved, "fixed routing")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
		require.NotNil(t, ticket.ResolvedAt)
		assert.Equal(t, fixedNow, *ticket.ResolvedAt)
		require.NotNil(t, ticket.ResolutionMinutes)
		assert.Equal(t, 180, *ticket.ResolutionMinutes)
		assert.Equal(t, []events.EventType{events.EventTicketStatusChanged, events.EventTicketResolved}, f.recorder.types())
	})

	t.Run("closing stamps closed_at and publishes", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusResolved).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

		ticket, err := f.svc.TransitionTo(context.Background(), requester(), 42, domain.TicketStatusClosed, "")
		require.NoError(t, err)
		require.NotNil(t, ticket.ClosedAt)
		assert.Equal(t, fixedNow, *ticket.ClosedAt)
		assert.Equal(t, []events.EventType{events.EventTicketStatusChanged, events.EventTicketClosed}, f.recorder.types())
	})

	t.Run("a lost write race is CONFLICT", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusInProgress).Return(repository.ErrStatusConflict)

		_, err := f.svc.TransitionTo(context.Background(), requester(), 42, domain.TicketStatusWaitingUser, "")
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("reopen allowed for the requester", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusResolved).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

		ticket, err := f.svc.TransitionTo(context.Background(), requester(), 42, domain.TicketStatusOpen, "still broken")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	})

	t.Run("reopen allowed for a helpdesk admin", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusResolved).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

		admin := domain.Actor{Type: domain.ActorTypeAdminHelpdesk, ID: "admin-1"}
		_, err := f.svc.TransitionTo(context.Background(), admin, 42, domain.TicketStatusOpen, "")
		require.NoError(t, err)
	})

	t.Run("reopen forbidden for other actors", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)

		stranger := domain.Actor{Type: domain.ActorTypeUser, ID: "user-2"}
		_, err := f.svc.TransitionTo(context.Background(), stranger, 42, domain.TicketStatusOpen, "")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

		technician := domain.Actor{Type: domain.ActorTypeTechnician, ID: "100"}
		_, err = f.svc.TransitionTo(context.Background(), technician, 42, domain.TicketStatusOpen, "")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})
}

func TestAssignToTechnician(t *testing.T) {
	admin := domain.Actor{Type: domain.ActorTypeAdminHelpdesk, ID: "admin-1"}
	activeTech := &domain.Technician{NIP: "200", Status: domain.TechnicianStatusActive, MaxConcurrentTickets: 5}

	t.Run("assigns an open ticket", func(t *testing.T) {
		f := newLifecycleFixture()
		ticket := existingTicket(domain.TicketStatusOpen)
		ticket.TechnicianNIP = nil
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(ticket, nil)
		f.technicians.On("GetByNIP", mock.Anything, "200").Return(activeTech, nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusOpen).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

		assigned, err := f.svc.AssignToTechnician(context.Background(), admin, 42, "200", "manual placement")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusAssigned, assigned.Status)
		require.NotNil(t, assigned.TechnicianNIP)
		assert.Equal(t, "200", *assigned.TechnicianNIP)
		assert.Equal(t, []events.EventType{events.EventTicketAssigned}, f.recorder.types())
		f.tickets.AssertNotCalled(t, "CountActiveByTechnician", mock.Anything, mock.Anything)
	})

	t.Run("rejects assignment past ASSIGNED", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)

		_, err := f.svc.AssignToTechnician(context.Background(), admin, 42, "200", "")
		assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
	})

	t.Run("rejects an inactive technician", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusOpen), nil)
		f.technicians.On("GetByNIP", mock.Anything, "200").Return(&domain.Technician{
			NIP: "200", Status: domain.TechnicianStatusInactive,
		}, nil)

		_, err := f.svc.AssignToTechnician(context.Background(), admin, 42, "200", "")
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})
}

func TestReassign(t *testing.T) {
	admin := domain.Actor{Type: domain.ActorTypeAdminHelpdesk, ID: "admin-1"}

	t.Run("moves an in-progress ticket without changing status", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)
		f.technicians.On("GetByNIP", mock.Anything, "300").Return(&domain.Technician{
			NIP: "300", Status: domain.TechnicianStatusActive,
		}, nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusInProgress).Return(nil)
		f.history.On("Create", mock.Anything, mock.Anything).Return(nil)

		ticket, err := f.svc.Reassign(context.Background(), admin, 42, "300", "rebalancing")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
		assert.Equal(t, "300", *ticket.TechnicianNIP)
	})

	t.Run("rejects settled tickets", func(t *testing.T) {
		for _, status := range []domain.TicketStatus{
			domain.TicketStatusResolved,
			domain.TicketStatusClosed,
			domain.TicketStatusCancelled,
		} {
			f := newLifecycleFixture()
			f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(status), nil)
			_, err := f.svc.Reassign(context.Background(), admin, 42, "300", "")
			assert.True(t, apperrors.IsCode(err, "CONFLICT"), string(status))
		}
	})
}

func TestSetRating(t *testing.T) {
	t.Run("accepts the requester's rating on a resolved ticket", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)
		f.tickets.On("UpdateGuarded", mock.Anything, mock.Anything, domain.TicketStatusResolved).Return(nil)
		f.history.On("Create", mock.Anything, mock.MatchedBy(func(entry *domain.TicketHistory) bool {
			return entry.ChangeType == domain.ChangeTypeRating
		})).Return(nil)

		ticket, err := f.svc.SetRating(context.Background(), requester(), 42, 4)
		require.NoError(t, err)
		require.NotNil(t, ticket.Rating)
		assert.Equal(t, 4, *ticket.Rating)
		f.history.AssertExpectations(t)
	})

	t.Run("rejects out-of-range ratings", func(t *testing.T) {
		f := newLifecycleFixture()
		for _, rating := range []int{0, 6, -1} {
			_, err := f.svc.SetRating(context.Background(), requester(), 42, rating)
			assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), rating)
		}
	})

	t.Run("rejects rating before resolution", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusInProgress), nil)
		_, err := f.svc.SetRating(context.Background(), requester(), 42, 3)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("rejects anyone but the requester", func(t *testing.T) {
		f := newLifecycleFixture()
		f.tickets.On("GetByID", mock.Anything, int64(42)).Return(existingTicket(domain.TicketStatusResolved), nil)
		stranger := domain.Actor{Type: domain.ActorTypeUser, ID: "user-2"}
		_, err := f.svc.SetRating(context.Background(), stranger, 42, 3)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})
}

func TestGenerateTicketNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^TK-20260310-[0-9A-F]{4}$`)
	for i := 0; i < 20; i++ {
		number := generateTicketNumber(fixedNow)
		assert.Regexp(t, pattern, number)
	}
}
