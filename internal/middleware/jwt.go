package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/advait122/ROADmap/internal/utils"
)

// Request locals set by JWTProtected.
const (
	LocalStudentID = "user_id"
	LocalRole      = "user_role"
)

// StudentClaims is the token payload the API accepts. The subject carries the
// numeric student id; the role is read from "role" first, then "roles".
type StudentClaims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var errInvalidSubject = errors.New("token subject is not a student id")

// JWTProtected validates HMAC bearer tokens and exposes the student id and role.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	)
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "bearer token required")
		}

		claims := &StudentClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		studentID, err := studentIDFromSubject(claims.Subject)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalStudentID, studentID)
		if role := claims.primaryRole(); role != "" {
			c.Locals(LocalRole, role)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func studentIDFromSubject(subject string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(subject), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidSubject
	}
	return uint(parsed), nil
}

func (c *StudentClaims) primaryRole() string {
	if role := normalizeRole(c.Role); role != "" {
		return role
	}
	for _, candidate := range c.Roles {
		if role := normalizeRole(candidate); role != "" {
			return role
		}
	}
	return ""
}
