package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domains/user"
	"storefront-backend/pkg/jwt"
	"storefront-backend/pkg/logger"
)

const bcryptCost = 12

// userService implements user.Service
type userService struct {
	repo   user.Repository
	tokens *jwt.Manager

	// carts is nil when clear-on-logout is disabled
	carts user.CartClearer

	reset PasswordReset
}

// NewUserService wires the repository, token manager, optional cart
// clearer and the password reset collaborators
func NewUserService(repo user.Repository, tokens *jwt.Manager, carts user.CartClearer, reset PasswordReset) user.Service {
	if reset.TTL <= 0 {
		reset.TTL = defaultResetTTL
	}
	return &userService{
		repo:   repo,
		tokens: tokens,
		carts:  carts,
		reset:  reset,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register creates a customer account
func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	// 1. Validate input
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Email must be unused
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists
	}

	// 3. Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Persist
	newUser := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Name:         req.Name,
		Role:         user.RoleCustomer,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id": newUser.ID.String(),
	})

	dto := newUser.ToDTO()
	return &dto, nil
}

// Login verifies credentials and issues an access token
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	// 1. Validate input
	req.Email = user.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Find user; an unknown email looks the same as a wrong password
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 3. Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// 4. Issue token
	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &user.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        u.ToDTO(),
	}, nil
}

// Logout schedules the account cart clear when enabled.
// A queue failure is logged and never fails the logout.
func (s *userService) Logout(ctx context.Context, userID uuid.UUID) error {
	if s.carts == nil {
		return nil
	}

	if err := s.carts.EnqueueClearCart(ctx, userID, "logout"); err != nil {
		logger.Error("failed to enqueue cart clear on logout", err)
	}
	return nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}
