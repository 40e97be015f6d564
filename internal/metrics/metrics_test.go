package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := Middleware(mux)
	counter := httpRequestsTotal.WithLabelValues("404", http.MethodGet, "GET /api/v1/orders/{id}")
	before := testutil.ToFloat64(counter)

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders/abc", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders/def", nil))

	// Assert
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight))
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(ordersPlacedTotal.WithLabelValues("cod"))

	OrderPlaced("cod")

	assert.Equal(t, before+1, testutil.ToFloat64(ordersPlacedTotal.WithLabelValues("cod")))

	failures := testutil.ToFloat64(orderPlacementFailuresTotal.WithLabelValues("INSUFFICIENT_STOCK"))

	OrderPlacementFailed("INSUFFICIENT_STOCK")

	assert.Equal(t, failures+1, testutil.ToFloat64(orderPlacementFailuresTotal.WithLabelValues("INSUFFICIENT_STOCK")))

	sold := testutil.ToFloat64(stockUnitsSoldTotal)

	StockSold(3)

	assert.Equal(t, sold+3, testutil.ToFloat64(stockUnitsSoldTotal))
}
