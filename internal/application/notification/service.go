package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles notification read operations. Creation happens inside the
// order and document transactions via the Fanout builder.
type Service struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewService creates a new notification service
func NewService(repo notification.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns a user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]NotificationResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.UnreadOnly {
		domainFilter.Filters["is_read"] = false
	}

	list, err := s.repo.FindForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return ToNotificationResponses(list), unread, nil
}

// MarkRead flips the read flag on a notification owned by the user
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return err
	}
	s.logger.Debug("Notification marked read",
		zap.String("user_id", userID.String()),
		zap.String("notification_id", notificationID.String()))
	return nil
}

// CountUnread returns the number of unread notifications for a user
func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
