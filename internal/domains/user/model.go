package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account entity, one row in the users table
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// IsAdmin mirrors the storefront's isAdmin flag
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ToDTO strips credentials
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsAdmin:   u.IsAdmin(),
		CreatedAt: u.CreatedAt,
	}
}
