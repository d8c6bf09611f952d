package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/infrastructure/auth"
)

// RegisterClientInput carries a client self-registration
type RegisterClientInput struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required,max=200"`
	CompanyName string `json:"companyName" binding:"max=200"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	ClientType  string `json:"clientType" binding:"required,oneof=buyer supplier"`
}

// RegisterManagerInput carries an account-manager registration
type RegisterManagerInput struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required,max=200"`
	CompanyName string `json:"companyName" binding:"max=200"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Role        string `json:"role" binding:"required,oneof=buyer supplier"`
}

// LoginInput carries login credentials
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput carries a refresh token
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserResponse is the read model for a user
type UserResponse struct {
	ID               uuid.UUID   `json:"id"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	CompanyName      string      `json:"companyName,omitempty"`
	Role             string      `json:"role,omitempty"`
	ClientType       string      `json:"clientType,omitempty"`
	ManagedClientIDs []uuid.UUID `json:"managedClientIds,omitempty"`
	LastLoginAt      *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// AuthResponse bundles the user with a fresh token pair
type AuthResponse struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// ToUserResponse maps a domain user to its read model
func ToUserResponse(u *identity.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		CompanyName: u.CompanyName,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Role.IsValid() {
		resp.Role = u.Role.String()
		resp.ManagedClientIDs = u.ManagedClientIDs
	}
	if u.ClientType.IsValid() {
		resp.ClientType = u.ClientType.String()
	}
	return resp
}
