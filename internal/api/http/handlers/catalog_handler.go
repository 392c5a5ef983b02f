package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/krakatau-dev/helpdesk/internal/api/dto"
	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/service"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// CatalogHandler serves the application/category reference data.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetApplication GET /applications/:id.
func (h *CatalogHandler) GetApplication(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid application id", nil)
	}

	app, err := h.catalog.GetApplication(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}

// ListCategories GET /applications/:id/categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid application id", nil)
	}

	categories, err := h.catalog.CategoriesFor(c.Context(), id)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func applicationResponse(app *domain.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		IsActive:    app.IsActive,
	}
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:              category.ID,
		ApplicationID:   category.ApplicationID,
		Name:            category.Name,
		DefaultPriority: category.DefaultPriority,
		SLAHours:        category.SLAHours,
		IsActive:        category.IsActive,
	}
}
