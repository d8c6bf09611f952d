package notification

import (
	"context"

	"github.com/recyclemart/backend/internal/domain/identity"
	domainnotification "github.com/recyclemart/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// EmailSender delivers one email. Implementations live in infrastructure.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailNotifier mirrors committed in-app notifications to email. Delivery is
// best effort: failures are logged and never surface to the caller, and the
// in-app notification is already durable by the time this runs.
type EmailNotifier struct {
	users  identity.UserRepository
	sender EmailSender
	logger *zap.Logger
}

// NewEmailNotifier creates a new EmailNotifier
func NewEmailNotifier(users identity.UserRepository, sender EmailSender, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{users: users, sender: sender, logger: logger}
}

// Notify emails each recipient their committed notification. Safe on a nil
// receiver so services can treat email as optional.
func (e *EmailNotifier) Notify(ctx context.Context, list []*domainnotification.Notification) {
	if e == nil {
		return
	}
	for _, n := range list {
		user, err := e.users.FindByID(ctx, n.UserID)
		if err != nil {
			e.logger.Warn("Email recipient lookup failed",
				zap.String("user_id", n.UserID.String()), zap.Error(err))
			continue
		}
		if err := e.sender.Send(ctx, user.Email, subjectFor(n.Kind), n.Message); err != nil {
			e.logger.Warn("Email delivery failed",
				zap.String("user_id", n.UserID.String()),
				zap.String("kind", n.Kind.String()),
				zap.Error(err))
		}
	}
}

func subjectFor(kind domainnotification.Kind) string {
	switch kind {
	case domainnotification.KindOrderCreated:
		return "New order on RecycleMart"
	case domainnotification.KindStatusChanged:
		return "Order status updated"
	case domainnotification.KindDocumentGenerated:
		return "Contract documents ready"
	case domainnotification.KindSignatureRequested:
		return "Your signature is requested"
	case domainnotification.KindSignatureCompleted:
		return "Contract fully signed"
	case domainnotification.KindOrderProcessing:
		return "Order moved to processing"
	case domainnotification.KindOrderCompleted:
		return "Order completed"
	case domainnotification.KindSubmissionDeclined:
		return "Document declined"
	case domainnotification.KindSubmissionExpired:
		return "Document expired"
	default:
		return "RecycleMart notification"
	}
}
