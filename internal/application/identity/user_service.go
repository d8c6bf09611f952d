package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/recyclemart/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// UserService handles manager book administration
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// AssignClient adds a client to the acting manager's book. The client must be
// an end-user on the manager's side.
func (s *UserService) AssignClient(ctx context.Context, actor identity.Actor, clientID uuid.UUID) (*UserResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	manager, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := manager.AssignClient(client); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, manager); err != nil {
		return nil, err
	}
	event.Drain(s.logger, manager)

	s.logger.Info("Client assigned",
		zap.String("manager_id", manager.ID.String()),
		zap.String("client_id", clientID.String()))

	resp := ToUserResponse(manager)
	return &resp, nil
}

// UnassignClient removes a client from the acting manager's book
func (s *UserService) UnassignClient(ctx context.Context, actor identity.Actor, clientID uuid.UUID) (*UserResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	manager, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := manager.UnassignClient(clientID); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, manager); err != nil {
		return nil, err
	}

	s.logger.Info("Client unassigned",
		zap.String("manager_id", manager.ID.String()),
		zap.String("client_id", clientID.String()))

	resp := ToUserResponse(manager)
	return &resp, nil
}

// ManagedClients lists the clients in the acting manager's book
func (s *UserService) ManagedClients(ctx context.Context, actor identity.Actor) ([]UserResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	manager, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(manager.ManagedClientIDs))
	for _, id := range manager.ManagedClientIDs {
		client, err := s.users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, ToUserResponse(client))
	}
	return out, nil
}
