package repository

import (
	"context"
	"errors"
	"fmt"

	"shop-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// pgForeignKeyViolation is the SQLSTATE raised when a referenced category is missing.
	pgForeignKeyViolation = "23503"
	// pgNumericOverflow is raised when a price does not fit NUMERIC(12,2).
	pgNumericOverflow = "22003"

	selectProductsSQL = `
		SELECT p.id, p.name, p.price, c.id, c.name
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		LEFT JOIN categories c ON c.id = pc.category_id
	`
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves every product with its categories, ordered by ID.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	products, err := queryProducts(ctx, r.pool, selectProductsSQL+` ORDER BY p.id, pc.position`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := getProduct(ctx, r.pool, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, err
	}

	if product == nil {
		r.logger.Debug().Int64("product_id", id).Msg("product not found")
	}

	return product, nil
}

// Count returns the number of stored products.
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Create inserts a product and its category links.
func (r *productRepository) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	products, err := r.CreateMany(ctx, []model.ProductInput{in})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// CreateMany inserts all products in a single transaction.
func (r *productRepository) CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error) {
	if len(inputs) == 0 {
		return []model.Product{}, nil
	}

	created := make([]model.Product, 0, len(inputs))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, in := range inputs {
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`,
				in.Name, in.Price.Decimal,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert product: %w", err)
			}

			if err := linkCategories(ctx, tx, id, in.CategoryIDs()); err != nil {
				return err
			}

			product, err := getProduct(ctx, tx, id)
			if err != nil {
				return err
			}
			created = append(created, *product)
		}
		return nil
	})
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Int("count", len(inputs)).Msg("failed to create products")
		return nil, err
	}

	r.logger.Debug().Int("count", len(created)).Msg("products created successfully")

	return created, nil
}

// Update replaces a product's fields and category links.
func (r *productRepository) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	var updated *model.Product
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET name = $1, price = $2, updated_at = NOW() WHERE id = $3`,
			in.Name, in.Price.Decimal, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear product categories: %w", err)
		}

		if err := linkCategories(ctx, tx, id, in.CategoryIDs()); err != nil {
			return err
		}

		updated, err = getProduct(ctx, tx, id)
		return err
	})
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, err
	}

	if updated == nil {
		r.logger.Debug().Int64("product_id", id).Msg("product not found for update")
	}

	return updated, nil
}

// Delete removes a product. Category links are removed by cascade.
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// linkCategories inserts product_categories rows, keeping the given order.
func linkCategories(ctx context.Context, tx pgx.Tx, productID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, categoryID := range categoryIDs {
		batch.Queue(
			`INSERT INTO product_categories (product_id, category_id, position) VALUES ($1, $2, $3)`,
			productID, categoryID, i,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, categoryID := range categoryIDs {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return model.NewCategoryNotFoundError(categoryID)
			}
			return fmt.Errorf("failed to link category %d: %w", categoryID, err)
		}
	}

	return nil
}

// getProduct loads one product with its categories. Returns nil if absent.
func getProduct(ctx context.Context, q querier, id int64) (*model.Product, error) {
	products, err := queryProducts(ctx, q, selectProductsSQL+` WHERE p.id = $1 ORDER BY pc.position`, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// queryProducts folds joined product/category rows into products. Rows must
// be grouped by product ID.
func queryProducts(ctx context.Context, q querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			id           int64
			name         string
			price        decimal.Decimal
			categoryID   *int64
			categoryName *string
		)
		if err := rows.Scan(&id, &name, &price, &categoryID, &categoryName); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if n := len(products); n == 0 || products[n-1].ID != id {
			products = append(products, model.Product{
				ID:         id,
				Name:       name,
				Price:      model.NewPrice(price),
				Categories: []model.Category{},
			})
		}

		if categoryID != nil {
			last := &products[len(products)-1]
			last.Categories = append(last.Categories, model.Category{ID: *categoryID, Name: *categoryName})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// translateError surfaces domain errors raised inside a transaction unchanged
// and maps a price overflow to the invalid price error.
func translateError(err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgNumericOverflow {
		return model.ErrPriceTooLarge
	}
	return err
}
