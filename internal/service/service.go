package service

import (
	"context"

	"shop-catalog/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves every product with its categories.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, in model.ProductInput) (*model.Product, error)

	// CreateMany validates and stores all products, or none of them.
	CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error)

	// Update validates and replaces an existing product.
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id int64) error
}

// CategoryService defines operations for category management.
type CategoryService interface {
	// List retrieves all categories.
	List(ctx context.Context) ([]model.Category, error)

	// Create adds a category with a unique name.
	Create(ctx context.Context, name string) (*model.Category, error)

	// Delete removes a category that no product references.
	Delete(ctx context.Context, id int64) error
}
