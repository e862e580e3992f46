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

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves every product with its categories.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		s.logger.Warn().Int64("product_id", id).Msg("invalid product ID")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create validates and stores a new product.
func (s *productService) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	in, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, in)
	if err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// CreateMany validates every input before storing any of them.
func (s *productService) CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error) {
	prepared := make([]model.ProductInput, 0, len(inputs))
	for i, in := range inputs {
		in, err := s.prepare(ctx, in)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("bulk product rejected")
			return nil, err
		}
		prepared = append(prepared, in)
	}

	products, err := s.productRepo.CreateMany(ctx, prepared)
	if err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Info().Int("count", len(products)).Msg("products created")

	return products, nil
}

// Update validates and replaces an existing product.
func (s *productService) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	in, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, in)
	if err != nil {
		return nil, s.storeError("update", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found for update")
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return product, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrProductNotFound
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")

	return nil
}

// prepare normalises and validates a write payload, then checks that every
// referenced category exists.
func (s *productService) prepare(ctx context.Context, in model.ProductInput) (model.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Categories = model.RefsFromIDs(model.UniqueIDs(in.CategoryIDs()))

	if err := in.Validate(); err != nil {
		return in, err
	}

	missing, err := s.categoryRepo.FindMissing(ctx, in.CategoryIDs())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to verify categories")
		return in, fmt.Errorf("failed to verify categories: %w", err)
	}

	if len(missing) > 0 {
		return in, model.NewCategoryNotFoundError(missing[0])
	}

	return in, nil
}

// storeError passes domain errors through and wraps everything else.
func (s *productService) storeError(op string, err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	s.logger.Error().Err(err).Str("operation", op).Msg("failed to store product")
	return fmt.Errorf("failed to %s product: %w", op, err)
}
