package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/mocks"
)

func snapshot(nip string, level domain.ExpertiseLevel, hasExpertise bool, workload, maxTickets int, successRate float64) domain.TechnicianSnapshot {
	return domain.TechnicianSnapshot{
		NIP:                  nip,
		Name:                 "Tech " + nip,
		SkillLevel:           level,
		MaxConcurrentTickets: maxTickets,
		CurrentWorkload:      workload,
		HasExpertise:         hasExpertise,
		ExpertiseLevel:       level,
		SuccessRate:          successRate,
	}
}

func TestSelectBestTechnician(t *testing.T) {
	svc := NewAssignmentService(nil, zap.NewNop())
	ticket := &domain.Ticket{ID: 1, CategoryID: 10}

	t.Run("empty pool yields no candidate", func(t *testing.T) {
		nip, ok := svc.SelectBestTechnician(ticket, nil)
		assert.False(t, ok)
		assert.Empty(t, nip)
	})

	t.Run("higher expertise wins", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("200", domain.ExpertiseBeginner, true, 0, 5, 0.9),
			snapshot("100", domain.ExpertiseExpert, true, 0, 5, 0.5),
		}
		nip, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		assert.Equal(t, "100", nip)
	})

	t.Run("expertise holders beat non-holders regardless of score", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("300", domain.ExpertiseExpert, false, 0, 5, 1.0),
			snapshot("400", domain.ExpertiseBeginner, true, 4, 5, 0.1),
		}
		nip, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		assert.Equal(t, "400", nip)
	})

	t.Run("all non-holders compete when nobody has expertise", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("500", domain.ExpertiseNone, false, 3, 5, 0.2),
			snapshot("600", domain.ExpertiseNone, false, 0, 5, 0.8),
		}
		nip, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		assert.Equal(t, "600", nip)
	})

	t.Run("workload breaks a score tie", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("700", domain.ExpertiseAdvanced, true, 2, 4, 0.5),
			snapshot("800", domain.ExpertiseAdvanced, true, 1, 2, 0.5),
		}
		// Same normalized workload, same score: lower absolute workload wins.
		nip, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		assert.Equal(t, "800", nip)
	})

	t.Run("NIP breaks a full tie", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("902", domain.ExpertiseIntermediate, true, 1, 5, 0.6),
			snapshot("901", domain.ExpertiseIntermediate, true, 1, 5, 0.6),
		}
		nip, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		assert.Equal(t, "901", nip)
	})

	t.Run("selection is deterministic", func(t *testing.T) {
		candidates := []domain.TechnicianSnapshot{
			snapshot("111", domain.ExpertiseIntermediate, true, 2, 5, 0.7),
			snapshot("222", domain.ExpertiseAdvanced, true, 4, 5, 0.3),
			snapshot("333", domain.ExpertiseBeginner, true, 0, 5, 0.9),
		}
		first, ok := svc.SelectBestTechnician(ticket, candidates)
		require.True(t, ok)
		for i := 0; i < 10; i++ {
			again, ok := svc.SelectBestTechnician(ticket, candidates)
			require.True(t, ok)
			assert.Equal(t, first, again)
		}
	})
}

func TestFindBestTechnician(t *testing.T) {
	ticket := &domain.Ticket{ID: 1, CategoryID: 10}

	t.Run("queries directory and selects", func(t *testing.T) {
		repo := new(mocks.TechnicianRepository)
		repo.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{
			snapshot("100", domain.ExpertiseExpert, true, 0, 5, 0.5),
		}, nil)

		svc := NewAssignmentService(repo, zap.NewNop())
		nip, ok, err := svc.FindBestTechnician(context.Background(), ticket)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "100", nip)
		repo.AssertExpectations(t)
	})

	t.Run("no candidates is ok=false, not an error", func(t *testing.T) {
		repo := new(mocks.TechnicianRepository)
		repo.On("CandidatesFor", mock.Anything, int64(10)).Return([]domain.TechnicianSnapshot{}, nil)

		svc := NewAssignmentService(repo, zap.NewNop())
		nip, ok, err := svc.FindBestTechnician(context.Background(), ticket)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, nip)
	})

	t.Run("directory failure surfaces as error", func(t *testing.T) {
		repo := new(mocks.TechnicianRepository)
		repo.On("CandidatesFor", mock.Anything, int64(10)).Return(nil, errors.New("db down"))

		svc := NewAssignmentService(repo, zap.NewNop())
		_, ok, err := svc.FindBestTechnician(context.Background(), ticket)
		require.Error(t, err)
		assert.False(t, ok)
	})
}
