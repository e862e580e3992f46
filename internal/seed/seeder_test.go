package seed

import (
	"context"
	"errors"
	"testing"

	"shop-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *mockCategoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *mockCategoryRepository) Upsert(ctx context.Context, name string) (*model.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCategoryRepository) FindMissing(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}

func twoFileLoader() Loader {
	return &mockLoader{loadFunc: func(ctx context.Context, path string) (*Catalog, error) {
		c := NewCatalog()
		switch path {
		case "a.gz":
			c.AddProduct(ProductSeed{Name: "Hammer", Price: model.MustPrice("10"), Categories: []string{"Tools"}})
		case "b.gz":
			c.AddProduct(ProductSeed{Name: "Rake", Price: model.MustPrice("7"), Categories: []string{"Garden", "Tools"}})
		default:
			return nil, errors.New("no such file")
		}
		return c, nil
	}}
}

func TestLoadAll_MergesInPathOrder(t *testing.T) {
	catalog, err := LoadAll(context.Background(), twoFileLoader(), []string{"b.gz", "a.gz"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Garden", "Tools"}, catalog.Categories)
	require.Len(t, catalog.Products, 2)
	assert.Equal(t, "Rake", catalog.Products[0].Name)
	assert.Equal(t, "Hammer", catalog.Products[1].Name)
}

func TestLoadAll_Error(t *testing.T) {
	catalog, err := LoadAll(context.Background(), twoFileLoader(), []string{"a.gz", "missing.gz"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.gz")
	assert.Nil(t, catalog)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()

	expectedInputs := []model.ProductInput{
		model.NewProductInput("Hammer", model.MustPrice("10"), []int64{1}),
		model.NewProductInput("Rake", model.MustPrice("7"), []int64{2, 1}),
	}

	tests := []struct {
		name          string
		force         bool
		existing      int
		expected      Result
		expectCreate  bool
		createErr     error
		expectedError bool
	}{
		{
			name:         "Empty catalog is seeded",
			expected:     Result{Categories: 2, Products: 2},
			expectCreate: true,
		},
		{
			name:     "Existing products skip seeding",
			existing: 3,
			expected: Result{Skipped: true},
		},
		{
			name:         "Force seeds regardless",
			force:        true,
			existing:     3,
			expected:     Result{Categories: 2, Products: 2},
			expectCreate: true,
		},
		{
			name:          "Create failure",
			expectCreate:  true,
			createErr:     model.NewCategoryNotFoundError(2),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(mockProductRepository)
			categories := new(mockCategoryRepository)

			if !tt.force {
				products.On("Count", ctx).Return(tt.existing, nil)
			}
			if tt.expectCreate {
				categories.On("Upsert", mock.Anything, "Tools").Return(&model.Category{ID: 1, Name: "Tools"}, nil)
				categories.On("Upsert", mock.Anything, "Garden").Return(&model.Category{ID: 2, Name: "Garden"}, nil)
				if tt.createErr != nil {
					products.On("CreateMany", mock.Anything, expectedInputs).Return(nil, tt.createErr)
				} else {
					products.On("CreateMany", mock.Anything, expectedInputs).
						Return([]model.Product{{ID: 1}, {ID: 2}}, nil)
				}
			}

			seeder := NewSeeder(twoFileLoader(), products, categories, zerolog.Nop())

			result, err := seeder.Run(ctx, []string{"a.gz", "b.gz"}, tt.force)

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrCategoryNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			products.AssertExpectations(t)
			categories.AssertExpectations(t)
		})
	}
}

func TestProductInputs_UnknownCategory(t *testing.T) {
	catalog := NewCatalog()
	catalog.AddProduct(ProductSeed{Name: "Hammer", Price: model.MustPrice("1"), Categories: []string{"Tools"}})

	inputs, err := ProductInputs(catalog, map[string]int64{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "Tools"`)
	assert.Nil(t, inputs)
}
