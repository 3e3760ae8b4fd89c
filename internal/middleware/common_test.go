package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRegisterRecoversAndTagsResponses(t *testing.T) {
	logger := zerolog.Nop()
	app := fiber.New()
	Register(app, Config{Logger: &logger, AllowOrigins: "https://roadmap.example"})
	app.Get("/api/v1/roadmap/tasks", func(c *fiber.Ctx) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roadmap/tasks", nil)
	req.Header.Set("Origin", "https://roadmap.example")
	req.Header.Set(CorrelationHeader, "trace-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "trace-1", resp.Header.Get(CorrelationHeader))
	require.Equal(t, "https://roadmap.example", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
