package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

// CatalogService serves the application/category reference data users
// browse when filing a ticket.
type CatalogService struct {
	applications repository.ApplicationRepository
	categories   repository.CategoryRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(applications repository.ApplicationRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{applications: applications, categories: categories}
}

// GetApplication fetches one application.
func (s *CatalogService) GetApplication(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"application_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return app, nil
}

// CategoriesFor lists the categories of an application.
func (s *CatalogService) CategoriesFor(ctx context.Context, applicationID int64) ([]domain.Category, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}
