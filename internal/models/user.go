package models

// Role represents user roles in the system
type Role string

const (
	RoleUser        Role = "user"
	RoleGarageOwner Role = "garage_owner"
)

// User represents the identity of the current session.
// Role is fixed when the user is created.
type User struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Role  Role   `bson:"role" json:"role"`
	Token string `bson:"token" json:"token"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=user garage_owner"`
}

// Claims represents the session token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleGarageOwner:
		return true
	default:
		return false
	}
}

// IsGarageOwner reports whether the user may open the owner dashboard.
func (u *User) IsGarageOwner() bool {
	return u != nil && u.Role == RoleGarageOwner
}
