package seed

import (
	"context"
	"fmt"

	"shop-catalog/internal/model"
	"shop-catalog/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Seeder writes seed catalogs into the database.
type Seeder struct {
	loader     Loader
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     zerolog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(
	loader Loader,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	logger zerolog.Logger,
) *Seeder {
	return &Seeder{
		loader:     loader,
		products:   products,
		categories: categories,
		logger:     logger.With().Str("component", "seeder").Logger(),
	}
}

// Result summarises a seeding run.
type Result struct {
	Skipped    bool
	Categories int
	Products   int
}

// LoadAll loads every path concurrently and merges the catalogs in path order.
func LoadAll(ctx context.Context, loader Loader, paths []string) (*Catalog, error) {
	catalogs := make([]*Catalog, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			catalog, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load seed file %s: %w", path, err)
			}
			catalogs[i] = catalog
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewCatalog()
	for _, c := range catalogs {
		merged.Merge(c)
	}
	return merged, nil
}

// Run seeds the database from paths. When products already exist the run is
// skipped unless force is set.
func (s *Seeder) Run(ctx context.Context, paths []string, force bool) (Result, error) {
	if !force {
		count, err := s.products.Count(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check existing products: %w", err)
		}
		if count > 0 {
			s.logger.Info().Int("existing_products", count).Msg("catalog not empty, skipping seed")
			return Result{Skipped: true}, nil
		}
	}

	catalog, err := LoadAll(ctx, s.loader, paths)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load seed files")
		return Result{}, err
	}

	return s.Apply(ctx, catalog)
}

// Apply upserts the catalog's categories and creates its products in a
// single transaction.
func (s *Seeder) Apply(ctx context.Context, catalog *Catalog) (Result, error) {
	ids := make(map[string]int64, len(catalog.Categories))
	for _, name := range catalog.Categories {
		c, err := s.categories.Upsert(ctx, name)
		if err != nil {
			return Result{}, fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		ids[name] = c.ID
	}

	inputs, err := ProductInputs(catalog, ids)
	if err != nil {
		return Result{}, err
	}

	created, err := s.products.CreateMany(ctx, inputs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to seed products: %w", err)
	}

	s.logger.Info().
		Int("categories", len(ids)).
		Int("products", len(created)).
		Msg("catalog seeded")

	return Result{Categories: len(ids), Products: len(created)}, nil
}

// ProductInputs converts seed products into write payloads, resolving
// category names through ids.
func ProductInputs(catalog *Catalog, ids map[string]int64) ([]model.ProductInput, error) {
	inputs := make([]model.ProductInput, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		categoryIDs := make([]int64, 0, len(p.Categories))
		for _, name := range p.Categories {
			id, ok := ids[name]
			if !ok {
				return nil, fmt.Errorf("product %q references unknown category %q", p.Name, name)
			}
			categoryIDs = append(categoryIDs, id)
		}
		inputs = append(inputs, model.NewProductInput(p.Name, p.Price, categoryIDs))
	}
	return inputs, nil
}
