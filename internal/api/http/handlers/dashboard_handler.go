package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/krakatau-dev/helpdesk/internal/api/dto"
	"github.com/krakatau-dev/helpdesk/internal/observability"
	"github.com/krakatau-dev/helpdesk/internal/service"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// DashboardHandler serves reporting aggregates.
type DashboardHandler struct {
	stats   *service.StatsService
	metrics *observability.Metrics
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats *service.StatsService, metrics *observability.Metrics) *DashboardHandler {
	return &DashboardHandler{stats: stats, metrics: metrics}
}

// Summary GET /dashboard/summary. Ticket counts come from storage via
// the stats cache; sweep totals are process-local counters.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return err
	}
	var runs, escalated int64
	if h.metrics != nil {
		runs, escalated = h.metrics.SweepTotals()
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"summary": summary,
		"sweeps": fiber.Map{
			"runs":              runs,
			"tickets_escalated": escalated,
		},
	}})
}

// CategoryStats GET /categories/:id/stats.
func (h *DashboardHandler) CategoryStats(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		return apperrors.NewValidationError("invalid category id", nil)
	}

	stats, err := h.stats.CategoryStats(c.Context(), categoryID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryStatsResponse{
		CategoryID:           stats.CategoryID,
		TicketCount:          stats.TicketCount,
		ResolvedCount:        stats.ResolvedCount,
		AvgResolutionMinutes: stats.AvgResolutionMinutes,
		SuccessRate:          stats.SuccessRate,
	}})
}
