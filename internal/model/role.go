package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the authenticated actor's role as supplied by the auth collaborator.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleStorekeeper Role = "storekeeper"
	RoleCashier     Role = "cashier"
)

var validRoles = []Role{RoleOwner, RoleStorekeeper, RoleCashier}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Actor identifies who is calling a core operation.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// Is reports whether the actor holds one of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
