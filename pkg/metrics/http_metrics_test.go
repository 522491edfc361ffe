package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusCategory(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
		{100, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusCategory(tt.status), "status %d", tt.status)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPMetrics("storefront-test")
	NewHTTPMetrics("storefront-test") // registering twice must not panic

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(RequestCounter.WithLabelValues("storefront-test", "GET", "/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StatusCodeCategoryCounter.WithLabelValues("storefront-test", "2xx", "GET", "/ping")))
}
