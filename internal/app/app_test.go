package app_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	a, _ := app.New(app.Components{
		Products:      repositories.NewMockProductRepository(),
		Stock:         repositories.NewMockStockRepository(),
		Orders:        repositories.NewMockOrderRepository(),
		Registry:      prometheus.NewRegistry(),
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	})
	return a
}

func TestHealth(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Contains(t, string(body), `"events":"disabled"`)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/api/v1/cart", "/api/v1/checkout", "/api/v1/orders"} {
		resp, err := a.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}
