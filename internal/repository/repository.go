package repository

import (
	"context"

	"shop-catalog/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves every product with its categories, ordered by ID.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil if absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Count returns the number of stored products.
	Count(ctx context.Context) (int, error)

	// Create inserts a product and its category links.
	Create(ctx context.Context, in model.ProductInput) (*model.Product, error)

	// CreateMany inserts all products in a single transaction.
	CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error)

	// Update replaces a product's fields and category links.
	// Returns nil if the product does not exist.
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)

	// Delete removes a product. Reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// List retrieves all categories ordered by ID.
	List(ctx context.Context) ([]model.Category, error)

	// Create inserts a category. Returns model.ErrCategoryExists on a duplicate name.
	Create(ctx context.Context, name string) (*model.Category, error)

	// Upsert returns the category with the given name, creating it if needed.
	Upsert(ctx context.Context, name string) (*model.Category, error)

	// Delete removes an unused category. Returns model.ErrCategoryInUse if any
	// product references it. Reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)

	// FindMissing returns the IDs from ids that do not exist.
	FindMissing(ctx context.Context, ids []int64) ([]int64, error)
}
