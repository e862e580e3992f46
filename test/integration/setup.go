package integration

import (
	"context"
	"testing"
	"time"

	"shop-catalog/internal/model"
	"shop-catalog/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// catalog schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := repository.NewPool(ctx, connStr, &repository.DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.RunMigrations(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture holds the IDs created by SeedCatalog.
type Fixture struct {
	Tools    model.Category
	Garden   model.Category
	Products []model.Product
}

// SeedCatalog inserts two categories and three products.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()

	ctx := context.Background()

	var f Fixture
	err := pool.QueryRow(ctx, "INSERT INTO categories (name) VALUES ('Tools') RETURNING id, name").
		Scan(&f.Tools.ID, &f.Tools.Name)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	err = pool.QueryRow(ctx, "INSERT INTO categories (name) VALUES ('Garden') RETURNING id, name").
		Scan(&f.Garden.ID, &f.Garden.Name)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	products := []model.ProductInput{
		model.NewProductInput("Claw Hammer", model.MustPrice("12.50"), []int64{f.Tools.ID}),
		model.NewProductInput("Garden Rake", model.MustPrice("8.00"), []int64{f.Garden.ID, f.Tools.ID}),
		model.NewProductInput("Gift Card", model.MustPrice("0"), nil),
	}

	repo := repository.NewProductRepository(pool, zerolog.Nop())
	f.Products, err = repo.CreateMany(ctx, products)
	if err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}

	return f
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE product_categories, products, categories RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
