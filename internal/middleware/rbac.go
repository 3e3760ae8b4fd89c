package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/advait122/ROADmap/internal/utils"
)

// Roles known to the API. Students use the roadmap; admins and curators
// maintain the opportunity catalog. Company accounts post jobs and shortlist.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleCurator = "curator"
	RoleCompany = "company"
)

// RequireRole lets the request through only when the token role is one of roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if _, ok := allowed[normalizeRole(role)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
