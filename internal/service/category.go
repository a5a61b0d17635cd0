package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// CategoryService manages the catalog of service categories.
type CategoryService struct {
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories store.CategoryStore, logger *slog.Logger) (*CategoryService, error) {
	if categories == nil {
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{
		categories: categories,
		logger:     logger.With(slog.String("component", "category_service")),
	}, nil
}

// Create adds a category. Staff only.
func (s *CategoryService) Create(ctx context.Context, actor domain.Actor, name string) (*domain.ServiceCategory, error) {
	if !actor.IsStaff {
		return nil, NewServiceError("create_category", "actor is not staff", domain.ErrForbidden)
	}
	category, err := domain.NewServiceCategory(name)
	if err != nil {
		return nil, invalidInput("create_category", "invalid category", err)
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, NewServiceError("create_category", "failed to save category", err)
	}
	return category, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_category", "failed to load category", err)
	}
	return category, nil
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*domain.ServiceCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_categories", "failed to list categories", err)
	}
	return categories, nil
}
