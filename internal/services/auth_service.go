package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"github.com/rafflehq/raffle-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// ErrInvalidCredentials is returned for any login failure, without
// distinguishing unknown accounts from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthServiceImpl handles admin account registration and login
type AuthServiceImpl struct {
	adminRepo repositories.AdminUserRepository
	tokens    *jwt.TokenService
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminRepo repositories.AdminUserRepository, tokens *jwt.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		tokens:    tokens,
	}
}

// Register creates a new admin account with a bcrypt-hashed password.
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error) {
	existing, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("account with email %s already exists", req.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      "admin",
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		slog.Error("Failed to create admin account", "error", err, "email", req.Email)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("Admin account registered", "email", req.Email)
	user.Password = ""
	return user, nil
}

// Login verifies credentials and returns a signed bearer token.
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("account lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		slog.Warn("Login failed", "email", req.Email)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(jwt.Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	slog.Info("Admin logged in", "email", req.Email)
	return token, nil
}
