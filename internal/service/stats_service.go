package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/cache"
	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
)

// StatsService serves reporting aggregates. Values are always derived
// from ticket rows; Redis only shields the queries from repeated
// dashboard polling.
type StatsService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	statsCache *cache.StatsCache
	logger     *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, categories repository.CategoryRepository, statsCache *cache.StatsCache, logger *zap.Logger) *StatsService {
	return &StatsService{tickets: tickets, categories: categories, statsCache: statsCache, logger: logger}
}

// DashboardSummary is the admin dashboard aggregate.
type DashboardSummary struct {
	TotalTickets      int            `json:"total_tickets"`
	ByStatus          map[string]int `json:"by_status"`
	ActiveEscalations int            `json:"active_escalations"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Dashboard returns the dashboard summary, recomputing on cache miss.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	if hit, err := s.statsCache.GetJSON(ctx, cache.DashboardKey(), &summary); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if hit {
		return &summary, nil
	}

	statusCounts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	escalations, err := s.tickets.CountEscalatedActive(ctx)
	if err != nil {
		return nil, err
	}

	summary = DashboardSummary{
		ByStatus:          make(map[string]int, len(statusCounts)),
		ActiveEscalations: escalations,
		GeneratedAt:       time.Now().UTC(),
	}
	for status, count := range statusCounts {
		summary.ByStatus[string(status)] = count
		summary.TotalTickets += count
	}

	if err := s.statsCache.SetJSON(ctx, cache.DashboardKey(), summary); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return &summary, nil
}

// CategoryStats returns derived aggregates for a category.
func (s *StatsService) CategoryStats(ctx context.Context, categoryID int64) (*domain.CategoryStats, error) {
	key := cache.CategoryKey(categoryID)

	var stats domain.CategoryStats
	if hit, err := s.statsCache.GetJSON(ctx, key, &stats); err != nil {
		s.logger.Warn("category stats cache read failed", zap.Error(err))
	} else if hit {
		return &stats, nil
	}

	// Verify the category exists before computing over its tickets.
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	computed, err := s.categories.Stats(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.statsCache.SetJSON(ctx, key, computed); err != nil {
		s.logger.Warn("category stats cache write failed", zap.Error(err))
	}
	return computed, nil
}
