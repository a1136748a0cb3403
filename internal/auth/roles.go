package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/domain"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal := PrincipalFromContext(c)
		if _, anonymous := principal.(domain.Anonymous); anonymous {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, ok := allowedSet[domain.PrincipalRole(principal)]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
