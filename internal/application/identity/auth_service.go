package identity

import (
	"context"
	"time"

	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/recyclemart/backend/internal/infrastructure/auth"
	"github.com/recyclemart/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// AuthService handles registration, login, token refresh and logout
type AuthService struct {
	users      identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users identity.UserRepository, jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// RegisterClient registers an end-user client (buyer or supplier)
func (s *AuthService) RegisterClient(ctx context.Context, input RegisterClientInput) (*AuthResponse, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewClient(input.Email, input.Name, input.CompanyName, input.Password, identity.Side(input.ClientType))
	if err != nil {
		return nil, err
	}
	return s.finishRegistration(ctx, user)
}

// RegisterManager registers an account manager for one side
func (s *AuthService) RegisterManager(ctx context.Context, input RegisterManagerInput) (*AuthResponse, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewAccountManager(input.Email, input.Name, input.CompanyName, input.Password, identity.Side(input.Role))
	if err != nil {
		return nil, err
	}
	return s.finishRegistration(ctx, user)
}

func (s *AuthService) finishRegistration(ctx context.Context, user *identity.User) (*AuthResponse, error) {
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	event.Drain(s.logger, user)

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return &AuthResponse{User: ToUserResponse(user), Tokens: tokens}, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		// Same error for unknown email and bad password
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.CheckPassword(input.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now())
	if err != nil {
		s.logger.Warn("Blacklist check failed, continuing", zap.Error(err))
	} else if invalidated {
		// A fresh login supersedes a forced logout; nothing to do, new tokens
		// carry a later issued-at.
		s.logger.Debug("User had invalidated tokens", zap.String("user_id", user.ID.String()))
	}

	user.RecordLogin()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &AuthResponse{User: ToUserResponse(user), Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. Claims are
// rebuilt from the current user record so role and managed-client changes take
// effect on refresh.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, err
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err == nil && blacklisted {
		return nil, auth.ErrTokenBlacklisted
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.jwtService.RefreshTokenPair(input.RefreshToken, tokenInput(user))
	if err != nil {
		return nil, err
	}

	// The old refresh token is single-use
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to blacklist rotated refresh token", zap.Error(err))
	}

	return tokens, nil
}

// Logout blacklists the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// Already invalid, nothing to revoke
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the current user's profile
func (s *AuthService) Me(ctx context.Context, actor identity.Actor) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	input := auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	}
	if user.Role.IsValid() {
		input.Role = user.Role.String()
		input.ManagedClientIDs = user.ManagedClientIDs
	}
	if user.ClientType.IsValid() {
		input.ClientType = user.ClientType.String()
	}
	return input
}
