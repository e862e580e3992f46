package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"shop-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the test server received.
type recordedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

// recorder collects requests seen by a test server.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

// All returns a copy of the recorded requests.
func (r *recorder) All() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

// newTestServer serves status and body for every request and records them.
func newTestServer(t *testing.T, status int, body string) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.add(recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      string(data),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c, rec
}

func TestNew_InvalidBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "Unsupported scheme", baseURL: "ftp://example.com"},
		{name: "Missing host", baseURL: "http://"},
		{name: "Unparseable", baseURL: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.baseURL)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestClient_ListProducts(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK,
		`[{"id":1,"name":"Widget","price":9.99,"categories":[{"id":2,"name":"Tools"}]}]`)

	products, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "9.99", products[0].Price.String())
	assert.Equal(t, "Tools", products[0].Categories[0].Name)

	require.Len(t, requests.All(), 1)
	got := requests.All()[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/products", got.Path)
	assert.NotEmpty(t, got.RequestID)
}

func TestClient_ListCategories(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK, `[{"id":1,"name":"Tools"}]`)

	categories, err := c.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.Category{{ID: 1, Name: "Tools"}}, categories)
	assert.Equal(t, "/api/categories", requests.All()[0].Path)
}

func TestClient_CreateProduct_WireShape(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK,
		`{"id":5,"name":"Widget","price":9.99,"categories":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`)

	in := model.NewProductInput("Widget", model.MustPrice("9.99"), []int64{1, 2})
	product, err := c.CreateProduct(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, int64(5), product.ID)

	require.Len(t, requests.All(), 1)
	got := requests.All()[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/products", got.Path)
	assert.JSONEq(t, `{"name":"Widget","price":9.99,"categories":[{"id":1},{"id":2}]}`, got.Body)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		c, requests := newTestServer(t, http.StatusOK, `{"id":3,"name":"New","price":1,"categories":[]}`)

		product, err := c.UpdateProduct(context.Background(), 3, model.NewProductInput("New", model.MustPrice("1"), nil))

		require.NoError(t, err)
		assert.Equal(t, "New", product.Name)
		assert.Equal(t, http.MethodPut, requests.All()[0].Method)
		assert.Equal(t, "/api/products/3", requests.All()[0].Path)
		assert.JSONEq(t, `{"name":"New","price":1,"categories":[]}`, requests.All()[0].Body)
	})

	t.Run("Delete accepts any 2xx body", func(t *testing.T) {
		for _, tc := range []struct {
			status int
			body   string
		}{
			{http.StatusOK, `{"message":"product deleted"}`},
			{http.StatusOK, `deleted`},
			{http.StatusNoContent, ``},
		} {
			c, requests := newTestServer(t, tc.status, tc.body)

			err := c.DeleteProduct(context.Background(), 9)

			require.NoError(t, err)
			assert.Equal(t, http.MethodDelete, requests.All()[0].Method)
			assert.Equal(t, "/api/products/9", requests.All()[0].Path)
			assert.Empty(t, requests.All()[0].Body)
		}
	})
}

func TestClient_CreateProducts(t *testing.T) {
	c, requests := newTestServer(t, http.StatusOK, `[{"id":1,"name":"A","price":1,"categories":[]}]`)

	products, err := c.CreateProducts(context.Background(), []model.ProductInput{
		model.NewProductInput("A", model.MustPrice("1"), nil),
	})

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "/api/products/bulk", requests.All()[0].Path)
	assert.JSONEq(t, `[{"name":"A","price":1,"categories":[]}]`, requests.All()[0].Body)
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
		expectedCode    string
	}{
		{
			name:            "Envelope message",
			status:          http.StatusNotFound,
			body:            `{"timestamp":"2024-01-01T00:00:00Z","status":404,"error":"PRODUCT_NOT_FOUND","message":"product not found","requestId":"abc"}`,
			expectedMessage: "product not found",
			expectedCode:    "PRODUCT_NOT_FOUND",
		},
		{
			name:            "Error field only",
			status:          http.StatusNotFound,
			body:            `{"error":"Product not found"}`,
			expectedMessage: "Product not found",
		},
		{
			name:            "Plain text body",
			status:          http.StatusBadGateway,
			body:            "upstream exploded",
			expectedMessage: "upstream exploded",
		},
		{
			name:            "Empty body",
			status:          http.StatusServiceUnavailable,
			body:            "",
			expectedMessage: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)

			_, err := c.ListProducts(context.Background())

			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, tt.expectedCode, apiErr.Code)
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Equal(t, tt.status == http.StatusNotFound, IsNotFound(err))
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("Connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url)
		require.NoError(t, err)

		_, err = c.ListProducts(context.Background())

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, "/api/products", transportErr.Path)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
		require.NoError(t, err)

		_, err = c.ListCategories(context.Background())

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.Timeout())
	})

	t.Run("Undecodable body", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusOK, `{"not":"a list"}`)

		_, err := c.ListProducts(context.Background())

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Contains(t, err.Error(), "decode response")
	})
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c, err := New("http://localhost:8080", WithHTTPClient(hc))

	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}
