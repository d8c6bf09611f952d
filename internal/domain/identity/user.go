package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents a platform participant. A user is either an end-user client
// (ClientType set) trading on its own behalf, or an account manager (Role set)
// representing a set of managed clients. The two axes are mutually exclusive.
type User struct {
	shared.BaseAggregateRoot
	Email            string
	Name             string
	CompanyName      string
	PasswordHash     string
	Role             Side // account-manager axis, empty for clients
	ClientType       Side // end-user axis, empty for account managers
	ManagedClientIDs []uuid.UUID `gorm:"-"` // stored in managed_clients, loaded by repository
	LastLoginAt      *time.Time
}

// ManagedClient represents the assignment of an end-user client to an
// account manager.
type ManagedClient struct {
	ManagerID uuid.UUID
	ClientID  uuid.UUID
	CreatedAt time.Time
}

// NewClient creates a new end-user client (buyer or supplier)
func NewClient(email, name, companyName, password string, clientType Side) (*User, error) {
	if !clientType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be buyer or supplier")
	}
	user, err := newUser(email, name, companyName, password)
	if err != nil {
		return nil, err
	}
	user.ClientType = clientType
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NewAccountManager creates a new account manager for the given role side
func NewAccountManager(email, name, companyName, password string, role Side) (*User, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be buyer or supplier")
	}
	user, err := newUser(email, name, companyName, password)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

func newUser(email, name, companyName, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		CompanyName:       strings.TrimSpace(companyName),
		PasswordHash:      string(hash),
		ManagedClientIDs:  make([]uuid.UUID, 0),
	}, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

// IsAccountManager returns true if the user is an account manager
func (u *User) IsAccountManager() bool {
	return u.Role.IsValid()
}

// IsClient returns true if the user is an end-user client
func (u *User) IsClient() bool {
	return u.ClientType.IsValid()
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// ManagesClient returns true if the given client is in the manager's book
func (u *User) ManagesClient(clientID uuid.UUID) bool {
	for _, id := range u.ManagedClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// AssignClient adds a client to the manager's book. The client must be an
// end-user on the same side as the manager's role.
func (u *User) AssignClient(client *User) error {
	if !u.IsAccountManager() {
		return shared.NewDomainError("NOT_ACCOUNT_MANAGER", "Only account managers can manage clients")
	}
	if !client.IsClient() {
		return shared.NewDomainError("NOT_CLIENT", "Only end-user clients can be assigned to a manager")
	}
	if client.ClientType != u.Role {
		return shared.NewDomainError("SIDE_MISMATCH", "Client side does not match manager role")
	}
	if u.ManagesClient(client.ID) {
		return shared.ErrAlreadyExists
	}

	u.ManagedClientIDs = append(u.ManagedClientIDs, client.ID)
	u.UpdatedAt = time.Now()
	u.AddDomainEvent(NewClientAssignedEvent(u, client.ID))
	return nil
}

// UnassignClient removes a client from the manager's book
func (u *User) UnassignClient(clientID uuid.UUID) error {
	for idx, id := range u.ManagedClientIDs {
		if id == clientID {
			u.ManagedClientIDs = append(u.ManagedClientIDs[:idx], u.ManagedClientIDs[idx+1:]...)
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}
