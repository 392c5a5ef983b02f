package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/krakatau-dev/helpdesk/internal/api/dto"
	"github.com/krakatau-dev/helpdesk/internal/observability"
	"github.com/krakatau-dev/helpdesk/internal/service"
)

// EscalationsHandler exposes a manual trigger for the overdue sweep.
type EscalationsHandler struct {
	escalations *service.EscalationService
	metrics     *observability.Metrics
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalations *service.EscalationService, metrics *observability.Metrics) *EscalationsHandler {
	return &EscalationsHandler{escalations: escalations, metrics: metrics}
}

// Sweep POST /escalations/sweep. Runs one sweep immediately instead of
// waiting for the background interval. Manual runs count toward the
// same sweep totals as the worker's.
func (h *EscalationsHandler) Sweep(c *fiber.Ctx) error {
	now := time.Now().UTC()
	escalated, err := h.escalations.SweepOverdue(c.Context(), now)
	if err != nil {
		return err
	}
	h.metrics.RecordSweep(len(escalated))
	if escalated == nil {
		escalated = []int64{}
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		EscalatedTicketIDs: escalated,
		SweptAt:            now,
	}})
}
