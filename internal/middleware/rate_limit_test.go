package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newRateLimitedApp() *fiber.App {
	app := fiber.New(fiber.Config{ProxyHeader: "X-Real-IP"})
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Student"); id == "1" {
			c.Locals(LocalStudentID, uint(1))
		} else if id == "2" {
			c.Locals(LocalStudentID, uint(2))
		}
		return c.Next()
	})
	app.Use(RateLimit("match-refresh", 1, time.Minute))
	app.Post("/refresh", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func refreshStatus(t *testing.T, app *fiber.App, student, ip string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	if student != "" {
		req.Header.Set("X-Student", student)
	}
	req.Header.Set("X-Real-IP", ip)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRateLimitKeysByStudent(t *testing.T) {
	app := newRateLimitedApp()

	require.Equal(t, fiber.StatusNoContent, refreshStatus(t, app, "1", "10.0.0.1").StatusCode)

	limited := refreshStatus(t, app, "1", "10.0.0.9")
	require.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	require.Equal(t, "60", limited.Header.Get(fiber.HeaderRetryAfter))

	require.Equal(t, fiber.StatusNoContent, refreshStatus(t, app, "2", "10.0.0.1").StatusCode)
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	app := newRateLimitedApp()

	require.Equal(t, fiber.StatusNoContent, refreshStatus(t, app, "", "10.0.0.1").StatusCode)
	require.Equal(t, fiber.StatusTooManyRequests, refreshStatus(t, app, "", "10.0.0.1").StatusCode)
	require.Equal(t, fiber.StatusNoContent, refreshStatus(t, app, "", "10.0.0.2").StatusCode)
}
