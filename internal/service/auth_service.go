package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/config"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// GoogleDefaultWard is assigned to accounts created through Google sign-in.
const GoogleDefaultWard = "Not specified"

// UserCacheInvalidator drops cached account reads after a write.
type UserCacheInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users     repository.UserRepository
	userCache UserCacheInvalidator
	google    auth.GoogleVerifier
	tokenMgr  *auth.TokenManager
	passwords auth.PasswordPolicy
	logger    *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	UserCache UserCacheInvalidator
	// Google is nil when Google sign-in is not configured.
	Google    auth.GoogleVerifier
	Logger    *zap.Logger
}

// AuthResult is a signed-in account and its bearer token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput describes a citizen sign-up.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Ward     string `json:"ward" validate:"required,max=50"`
	Phone    string `json:"phone" validate:"max=20"`
}

// StaffInput provisions an administrator account.
type StaffInput struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,max=72"`
	Role     domain.Role `json:"role" validate:"required,oneof=admin wardAdmin"`
	Ward     string      `json:"ward" validate:"max=50"`
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     deps.UserRepo,
		userCache: deps.UserCache,
		google:    deps.Google,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		passwords: auth.NewPasswordPolicy(cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength),
		logger:    logger,
	}
}

// RegisterCitizen creates a citizen account and signs it in.
func (s *AuthService) RegisterCitizen(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Ward = strings.TrimSpace(input.Ward)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validateInput(input, s.passwordRule(input.Password)...); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleCitizen,
		Ward:         input.Ward,
		Phone:        input.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return s.issue(user)
}

// Login authenticates any account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LoginAdmin authenticates a super administrator.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("administrator account required")
	}
	return s.issue(user)
}

// LoginWardAdmin authenticates a ward administrator for the named ward.
func (s *AuthService) LoginWardAdmin(ctx context.Context, email, password, ward string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	ward = strings.TrimSpace(ward)
	if email == "" || password == "" || ward == "" {
		return nil, s.missingCredentials(email, password, ward, true)
	}

	user, err := s.users.GetByRoleWardEmail(ctx, domain.RoleWardAdmin, ward, email)
	if errors.Is(err, pgx.ErrNoRows) {
		// "9" and "Ward 9" name the same ward.
		user, err = s.users.GetByEmail(ctx, email)
		if err == nil && (user.Role != domain.RoleWardAdmin || !domain.WardMatches(ward, user.Ward)) {
			err = pgx.ErrNoRows
		}
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// LoginWithGoogle signs in with a Google ID token, linking or creating a
// citizen account on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperrors.NewValidationError("google sign-in is not configured", nil)
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "credential", Message: "is required"}})
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Info("google token rejected", zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid google credential")
	}

	user, err := s.users.GetByGoogleID(ctx, identity.Subject)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	googleID := identity.Subject
	user, err = s.users.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !identity.EmailVerified {
			return nil, apperrors.NewUnauthorized("google email is not verified")
		}
		user.GoogleID = &googleID
		if err := s.users.Update(ctx, user); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		s.invalidate(ctx, user.ID)
		return s.issue(user)
	case errors.Is(err, pgx.ErrNoRows):
		name := identity.Name
		if name == "" {
			name = strings.SplitN(identity.Email, "@", 2)[0]
		}
		user = &domain.User{
			Name:     name,
			Email:    strings.ToLower(identity.Email),
			Role:     domain.RoleCitizen,
			Ward:     GoogleDefaultWard,
			GoogleID: &googleID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.NewConflict("account already exists", nil)
			}
			return nil, apperrors.NewInternalError(err)
		}
		return s.issue(user)
	default:
		return nil, apperrors.NewInternalError(err)
	}
}

// Me returns the account behind userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// ProvisionStaff creates an administrator account unless the email is
// already registered. created reports whether a new account was written.
func (s *AuthService) ProvisionStaff(ctx context.Context, input StaffInput) (user *domain.User, created bool, err error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Ward = strings.TrimSpace(input.Ward)
	var extra []apperrors.FieldError
	if input.Role == domain.RoleWardAdmin && input.Ward == "" {
		extra = append(extra, apperrors.FieldError{Field: "ward", Message: "is required"})
	}
	extra = append(extra, s.passwordRule(input.Password)...)
	if err := validateInput(input, extra...); err != nil {
		return nil, false, err
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, apperrors.NewInternalError(err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	user = &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Ward:         input.Ward,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	return user, true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, s.missingCredentials(email, password, "", false)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}

func (s *AuthService) missingCredentials(email, password, ward string, needWard bool) error {
	var fields []apperrors.FieldError
	if email == "" {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "is required"})
	}
	if password == "" {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "is required"})
	}
	if needWard && ward == "" {
		fields = append(fields, apperrors.FieldError{Field: "ward", Message: "is required"})
	}
	return apperrors.NewFieldValidationError(fields)
}

func (s *AuthService) passwordRule(password string) []apperrors.FieldError {
	if err := s.passwords.Check(password); err != nil {
		return []apperrors.FieldError{{Field: "password", Message: err.Error()}}
	}
	return nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) invalidate(ctx context.Context, id string) {
	if s.userCache != nil {
		s.userCache.Invalidate(ctx, id)
	}
}
