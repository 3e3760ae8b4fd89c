package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/observability"
)

func TestObservabilityUsesReturnedErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalStudentID, uint(5))
		return c.Next()
	})
	app.Use(Observability(zerolog.New(&buf)))
	app.Get("/api/v1/roadmap/skills/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "skill is locked")
	})
	app.Get("/api/v1/notifications/stream", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	conflicts := observability.HTTPErrors().WithLabelValues(http.MethodGet, "/api/v1/roadmap/skills/:id", "409")
	before := testutil.ToFloat64(conflicts)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roadmap/skills/3", nil)
	req.Header.Set(CorrelationHeader, "cid-9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, before+1, testutil.ToFloat64(conflicts))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, float64(409), entry["status"])
	require.Equal(t, float64(5), entry["student_id"])
	require.Equal(t, "cid-9", entry["correlation_id"])
	require.Equal(t, "/api/v1/roadmap/skills/:id", entry["route"])

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Zero(t, buf.Len())
}
