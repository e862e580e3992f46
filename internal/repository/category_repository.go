package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-catalog/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pgUniqueViolation is the SQLSTATE raised on a duplicate category name.
const pgUniqueViolation = "23505"

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// List retrieves all categories ordered by ID.
func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Create inserts a category.
func (r *categoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	c := model.Category{Name: strings.TrimSpace(name)}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name,
	).Scan(&c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Int64("category_id", c.ID).Str("name", c.Name).Msg("category created")

	return &c, nil
}

// Upsert returns the category with the given name, creating it if needed.
func (r *categoryRepository) Upsert(ctx context.Context, name string) (*model.Category, error) {
	c := model.Category{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, strings.TrimSpace(name)).Scan(&c.ID, &c.Name)
	if err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to upsert category")
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}

	return &c, nil
}

// Delete removes an unused category.
func (r *categoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, model.ErrCategoryInUse
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return false, fmt.Errorf("failed to delete category: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// FindMissing returns the IDs from ids that do not exist, in input order.
func (r *categoryRepository) FindMissing(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id
		FROM unnest($1::bigint[]) WITH ORDINALITY AS u(id, ord)
		LEFT JOIN categories c ON c.id = u.id
		WHERE c.id IS NULL
		ORDER BY u.ord
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to check categories")
		return nil, fmt.Errorf("failed to check categories: %w", err)
	}
	defer rows.Close()

	missing := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		missing = append(missing, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category ids: %w", err)
	}

	if len(missing) > 0 {
		r.logger.Debug().Ints64("missing", missing).Msg("some categories not found")
	}

	return missing, nil
}
