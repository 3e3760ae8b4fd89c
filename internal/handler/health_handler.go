package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/advait122/ROADmap/internal/config"
	"github.com/advait122/ROADmap/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Cache       string    `json:"cache"`
	Broker      string    `json:"broker"`
}

// HealthCheck returns a handler that reports application health information.
// The optional dependencies are reported as enabled or disabled.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Cache:       enabled(cfg.RedisURL != ""),
			Broker:      enabled(cfg.NATSURL != ""),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

func enabled(flag bool) string {
	if flag {
		return "enabled"
	}
	return "disabled"
}
