package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-catalog/internal/model"
	"shop-catalog/internal/repository"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// List retrieves all categories.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	return categories, nil
}

// Create adds a category with a unique name.
func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidName
	}

	category, err := s.categoryRepo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrCategoryExists) {
			return nil, model.ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")

	return category, nil
}

// Delete removes a category that no product references.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrCategoryNotFound
	}

	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrCategoryInUse) {
			s.logger.Warn().Int64("category_id", id).Msg("refusing to delete category in use")
			return model.ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if !deleted {
		return model.NewCategoryNotFoundError(id)
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")

	return nil
}
