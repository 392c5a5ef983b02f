package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/mocks"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

func TestTechnicianGetByNIP(t *testing.T) {
	t.Run("returns directory entry with live workload", func(t *testing.T) {
		technicians := new(mocks.TechnicianRepository)
		tickets := new(mocks.TicketRepository)
		svc := NewTechnicianService(technicians, tickets)

		technicians.On("GetByNIP", mock.Anything, "100").Return(&domain.Technician{
			NIP: "100", Name: "Budi", Status: domain.TechnicianStatusActive, MaxConcurrentTickets: 5,
		}, nil)
		tickets.On("CountActiveByTechnician", mock.Anything, "100").Return(3, nil)
		technicians.On("ListExpertise", mock.Anything, "100").Return([]domain.CategoryExpertise{
			{TechnicianNIP: "100", CategoryID: 10, Level: domain.ExpertiseExpert, SuccessRate: 0.9},
		}, nil)

		detail, err := svc.GetByNIP(context.Background(), "100")
		require.NoError(t, err)
		assert.Equal(t, "Budi", detail.Technician.Name)
		assert.Equal(t, 3, detail.CurrentWorkload)
		require.Len(t, detail.Expertise, 1)
		assert.Equal(t, domain.ExpertiseExpert, detail.Expertise[0].Level)
	})

	t.Run("unknown NIP is NOT_FOUND", func(t *testing.T) {
		technicians := new(mocks.TechnicianRepository)
		tickets := new(mocks.TicketRepository)
		svc := NewTechnicianService(technicians, tickets)

		technicians.On("GetByNIP", mock.Anything, "999").Return(nil, pgx.ErrNoRows)

		_, err := svc.GetByNIP(context.Background(), "999")
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}
