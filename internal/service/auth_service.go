package service

import (
	"context"
	"errors"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService bridges the external identity provider and local user rows:
// it issues tokens for known users and reports who a token belongs to.
type AuthService interface {
	IssueToken(ctx context.Context, email string) (*TokenResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type TokenResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) IssueToken(ctx context.Context, email string) (*TokenResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err, "load user")
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, apperror.Forbidden("user account is inactive")
	}

	// 3. Sign
	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperror.Internal(err, "sign token")
	}
	return &TokenResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err, "load user")
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		return apperror.Internal(err, "update last seen")
	}
	return nil
}
