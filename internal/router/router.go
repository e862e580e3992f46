package router

import (
	"context"
	"net/http"
	"time"

	"shop-catalog/internal/handler"
	"shop-catalog/internal/middleware"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
// db may be nil, in which case /health does not ping the database.
func New(
	productHandler *handler.ProductHandler,
	categoryHandler *handler.CategoryHandler,
	db Pinger,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.Warn().Err(err).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Collection routes
	productCollection := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			productHandler.Create(w, r)
			return
		}
		productHandler.List(w, r)
	}
	mux.HandleFunc("/api/products", productCollection)

	mux.HandleFunc("/api/products/bulk", productHandler.CreateBulk)

	// Item routes; the bare trailing-slash path is treated as the collection
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/products/" {
			productCollection(w, r)
			return
		}

		switch r.Method {
		case http.MethodPut:
			productHandler.Update(w, r)
		case http.MethodDelete:
			productHandler.Delete(w, r)
		default:
			productHandler.GetByID(w, r)
		}
	})

	categoryCollection := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			categoryHandler.Create(w, r)
			return
		}
		categoryHandler.List(w, r)
	}
	mux.HandleFunc("/api/categories", categoryCollection)
	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/categories/" {
			categoryCollection(w, r)
			return
		}
		categoryHandler.Delete(w, r)
	})

	// Apply middleware in order: Tracing -> Recovery -> RequestID -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)
	h = otelhttp.NewHandler(h, "catalog-api")

	return h
}
