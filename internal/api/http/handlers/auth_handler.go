package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/api/dto"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/service"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// Authenticator issues sessions for every sign-in flow.
type Authenticator interface {
	RegisterCitizen(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginAdmin(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginWardAdmin(ctx context.Context, email, password, ward string) (*service.AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// AuthHandler exposes sign-up and sign-in endpoints.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.RegisterCitizen(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Ward:     req.Ward,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse(result))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result))
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.LoginAdmin(c.UserContext(), req.Identifier(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result))
}

// WardAdminLogin handles POST /auth/wardadmin/login.
func (h *AuthHandler) WardAdminLogin(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.LoginWardAdmin(c.UserContext(), req.Identifier(), req.Password, req.WardNumber)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result))
}

// GoogleLogin handles POST /auth/google/login.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.LoginWithGoogle(c.UserContext(), req.TokenID)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := domain.PrincipalID(auth.PrincipalFromContext(c))
	if userID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": userResponse(user)})
}

func authResponse(result *service.AuthResult) fiber.Map {
	return fiber.Map{
		"success":   true,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      userResponse(result.User),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Ward:      user.Ward,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}
