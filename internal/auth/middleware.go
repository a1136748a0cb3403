package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

const (
	principalKey = "auth_principal"
	userKey      = "auth_user"
)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	if err := m.authenticate(c, authHeader); err != nil {
		return err
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(userKey, user)
	c.Locals(principalKey, user.Principal())
	return nil
}

// PrincipalFromContext retrieves the caller. Routes without authentication
// yield Anonymous.
func PrincipalFromContext(c *fiber.Ctx) domain.Principal {
	if principal, ok := c.Locals(principalKey).(domain.Principal); ok && principal != nil {
		return principal
	}
	return domain.Anonymous{}
}

// UserFromContext returns the account loaded for the request, if any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok && user != nil
}
