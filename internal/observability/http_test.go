package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/observability"
)

func TestMetricsHandlerExposesRoadmapCollectors(t *testing.T) {
	observability.AssessmentResults().WithLabelValues("passed").Inc()
	observability.Replans().WithLabelValues("missed_tasks").Inc()

	app := fiber.New()
	app.Get("/metrics", observability.MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `roadmap_assessment_results_total{outcome="passed"} 1`)
	require.Contains(t, string(body), `roadmap_replans_total{reason="missed_tasks"} 1`)
	require.Contains(t, string(body), "promhttp_metric_handler_requests_total")
}
