package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the local projection of an authenticated identity. Credentials and
// sessions live with the auth collaborator; this row only pins the role.
type User struct {
	BaseModel
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	FullName   string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Role       Role       `gorm:"type:varchar(20);not null;index" json:"role" validate:"required,oneof=owner storekeeper cashier"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// Actor returns the identity used when this user calls a core operation.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// UserResponse is used for API responses
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     Role      `json:"role"`
	IsActive bool      `json:"is_active"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
