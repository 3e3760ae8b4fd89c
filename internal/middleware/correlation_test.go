package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDPropagation(t *testing.T) {
	var fromContext string
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/roadmap/tasks", func(c *fiber.Ctx) error {
		fromContext = CorrelationIDFromContext(c.UserContext())
		return c.SendString(GetCorrelationID(c))
	})

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"correlation header", map[string]string{CorrelationHeader: " plan-42 "}, "plan-42"},
		{"request id fallback", map[string]string{requestIDHeader: "req-7"}, "req-7"},
		{"correlation wins", map[string]string{CorrelationHeader: "a", requestIDHeader: "b"}, "a"},
		{"long id truncated", map[string]string{CorrelationHeader: strings.Repeat("x", 80)}, strings.Repeat("x", 64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/roadmap/tasks", nil)
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.Header.Get(CorrelationHeader))
			require.Equal(t, tc.want, fromContext)
		})
	}
}

func TestCorrelationIDRejectsUnsafeCallerIDs(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "bad id")
	resp, err := app.Test(req)
	require.NoError(t, err)

	_, err = uuid.Parse(resp.Header.Get(CorrelationHeader))
	require.NoError(t, err)
}

func TestContextWithCorrelationIgnoresBlank(t *testing.T) {
	ctx := ContextWithCorrelation(context.Background(), "  ")
	require.Empty(t, CorrelationIDFromContext(ctx))
	require.Equal(t, "run-1", CorrelationIDFromContext(ContextWithCorrelation(ctx, "run-1")))
	require.Empty(t, CorrelationIDFromContext(nil))
}
