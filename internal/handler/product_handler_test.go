package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) CreateMany(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func sampleProduct() *model.Product {
	return &model.Product{
		ID:         1,
		Name:       "Widget",
		Price:      model.MustPrice("9.99"),
		Categories: []model.Category{{ID: 1, Name: "Tools"}},
	}
}

// decodeError reads an error envelope from a recorded response.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		expectedBody   string
	}{
		{
			name:           "Success",
			method:         http.MethodGet,
			mockReturn:     []model.Product{*sampleProduct()},
			expectedStatus: http.StatusOK,
			expectService:  true,
			expectedBody:   `[{"id":1,"name":"Widget","price":9.99,"categories":[{"id":1,"name":"Tools"}]}]`,
		},
		{
			name:           "Empty catalog encodes as array",
			method:         http.MethodGet,
			mockReturn:     []model.Product{},
			expectedStatus: http.StatusOK,
			expectService:  true,
			expectedBody:   `[]`,
		},
		{
			name:           "Service error",
			method:         http.MethodGet,
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPatch,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("List", mock.Anything).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(tt.method, "/api/products", nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedStatus == http.StatusInternalServerError {
				resp := decodeError(t, w)
				assert.Equal(t, model.ErrCodeInternalError, resp.Error)
				assert.NotContains(t, resp.Message, "database")
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
		productID      int64
	}{
		{
			name:           "Success",
			path:           "/api/products/1",
			mockReturn:     sampleProduct(),
			expectedStatus: http.StatusOK,
			expectService:  true,
			productID:      1,
		},
		{
			name:           "Product not found",
			path:           "/api/products/999",
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeProductNotFound,
			expectService:  true,
			productID:      999,
		},
		{
			name:           "Non-numeric ID",
			path:           "/api/products/abc",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidID,
		},
		{
			name:           "Negative ID",
			path:           "/api/products/-3",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidID,
		},
		{
			name:           "Nested path",
			path:           "/api/products/1/extra",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, tt.productID).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, resp.Error)
				assert.Equal(t, tt.expectedStatus, resp.Status)
				assert.False(t, resp.Timestamp.IsZero())
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	expectedInput := model.NewProductInput("Widget", model.MustPrice("9.99"), []int64{1, 2})

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Product
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			body:           `{"name":"Widget","price":9.99,"categories":[{"id":1},{"id":2}]}`,
			mockReturn:     sampleProduct(),
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed JSON",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Validation failure",
			body:           `{"name":"Widget","price":9.99,"categories":[{"id":1},{"id":2}]}`,
			mockError:      model.ErrInvalidName,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidName,
		},
		{
			name:           "Unknown category",
			body:           `{"name":"Widget","price":9.99,"categories":[{"id":1},{"id":2}]}`,
			mockError:      model.NewCategoryNotFoundError(2),
			expectService:  true,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Create", mock.Anything, expectedInput).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var got model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, int64(1), got.ID)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_CreateBulk(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		inputs := []model.ProductInput{
			model.NewProductInput("A", model.MustPrice("1"), nil),
			model.NewProductInput("B", model.MustPrice("2"), []int64{1}),
		}
		mockService.On("CreateMany", mock.Anything, inputs).
			Return([]model.Product{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil)

		body := `[{"name":"A","price":1,"categories":[]},{"name":"B","price":2,"categories":[{"id":1}]}]`
		req := httptest.NewRequest(http.MethodPost, "/api/products/bulk", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateBulk(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty batch rejected", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/products/bulk", strings.NewReader(`[]`))
		w := httptest.NewRecorder()

		handler.CreateBulk(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeValidation, decodeError(t, w).Error)
		mockService.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()
	input := model.NewProductInput("Widget", model.MustPrice("9.99"), []int64{1})
	body := `{"name":"Widget","price":9.99,"categories":[{"id":1}]}`

	tests := []struct {
		name           string
		method         string
		path           string
		mockReturn     *model.Product
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			method:         http.MethodPut,
			path:           "/api/products/1",
			mockReturn:     sampleProduct(),
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			method:         http.MethodPut,
			path:           "/api/products/1",
			mockError:      model.ErrProductNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			method:         http.MethodPut,
			path:           "/api/products/zero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Wrong method",
			method:         http.MethodPost,
			path:           "/api/products/1",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Update", mock.Anything, int64(1), input).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Update(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Success", expectedStatus: http.StatusOK},
		{name: "Not found", mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound},
		{name: "Service error", mockError: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)
			mockService.On("Delete", mock.Anything, int64(7)).Return(tt.mockError)

			req := httptest.NewRequest(http.MethodDelete, "/api/products/7", nil)
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"message":"product deleted"}`, w.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		expected  int64
		expectErr bool
	}{
		{name: "Plain", path: "/api/products/42", expected: 42},
		{name: "Trailing slash", path: "/api/products/42/", expected: 42},
		{name: "Missing", path: "/api/products/", expectErr: true},
		{name: "Zero", path: "/api/products/0", expectErr: true},
		{name: "Overflow", path: "/api/products/99999999999999999999", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseID(tt.path, productPathPrefix)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}
