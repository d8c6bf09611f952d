package identity

import (
	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered = "UserRegistered"
	EventTypeClientAssigned = "ClientAssigned"
)

// UserRegisteredEvent is published when a user registers
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email      string `json:"email"`
	Role       Side   `json:"role,omitempty"`
	ClientType Side   `json:"client_type,omitempty"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Role:            user.Role,
		ClientType:      user.ClientType,
	}
}

// ClientAssignedEvent is published when a client is assigned to a manager
type ClientAssignedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewClientAssignedEvent creates a new ClientAssignedEvent
func NewClientAssignedEvent(manager *User, clientID uuid.UUID) *ClientAssignedEvent {
	return &ClientAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientAssigned, AggregateTypeUser, manager.ID),
		ClientID:        clientID,
	}
}
