package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService lets the owner register staff and assign their role.
type UserService interface {
	CreateUser(ctx context.Context, actor model.Actor, req *CreateUserRequest) (*model.User, error)
	UpdateRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	FullName string     `json:"full_name" validate:"required"`
	Role     model.Role `json:"role" validate:"required,oneof=owner storekeeper cashier"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, actor model.Actor, req *CreateUserRequest) (*model.User, error) {
	if err := requireRole(actor, "manage users", model.RoleOwner); err != nil {
		return nil, err
	}

	// 1. Validate
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 2. Check duplicate email
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Duplicate("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err, "check email")
	}

	// 3. Save
	user := &model.User{
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Duplicate("email already exists")
		}
		return nil, apperror.Internal(err, "create user")
	}
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role model.Role) (*model.User, error) {
	if err := requireRole(actor, "manage users", model.RoleOwner); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, apperror.Validation("unknown role")
	}
	if userID == actor.UserID && role != model.RoleOwner {
		return nil, apperror.InvalidState("owners cannot demote themselves")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err, "load user")
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, apperror.Internal(err, "update role")
	}
	user.Role = role
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "list users")
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err, "load user")
	}
	resp := user.ToResponse()
	return &resp, nil
}
