package usecase

import (
	"context"
	"errors"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const defaultNotificationIcon = "/assets/icons/icon-192x192.png"

// Notifier resolves recipients onto delivery channels and fans one logical
// notification out to them. Push goes out as a single multicast across all
// eligible tokens; email goes out per recipient for users who opted into the
// email channel. Failures on either channel are logged and swallowed: a
// missing notification is never worth failing the triggering handler.
type Notifier struct {
	users   domain.UserRepository
	push    domain.PushSender  // nil when the push transport is not configured
	email   domain.EmailSender // nil when SMTP is not configured
	metrics *metrics.Manager
	logger  *logger.Logger
}

func NewNotifier(users domain.UserRepository, push domain.PushSender, email domain.EmailSender, m *metrics.Manager, log *logger.Logger) *Notifier {
	return &Notifier{
		users:   users,
		push:    push,
		email:   email,
		metrics: m,
		logger:  log.Named("Notifier"),
	}
}

// SendToUsers delivers msg to every recipient that can and wants to receive
// it. Recipients with push disabled or no registered tokens are skipped on
// the push channel. Returns the number of tokens the transport accepted,
// which is zero on any failure.
func (n *Notifier) SendToUsers(ctx context.Context, recipientIDs []string, msg domain.PushMessage) int {
	var tokens []string
	for _, uid := range recipientIDs {
		user, err := n.users.FindByID(ctx, uid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				n.logger.Warn("Notification recipient no longer exists", zap.String("uid", uid))
			} else {
				n.logger.Error("Failed to resolve notification recipient", zap.Error(err), zap.String("uid", uid))
			}
			continue
		}

		if user.PushReady() {
			tokens = append(tokens, user.DeviceTokens...)
		}

		if n.email != nil && user.Settings.Notifications.EmailEnabled && user.Email != "" {
			if err := n.email.Send(user.Email, msg.Title, msg.Body); err != nil {
				n.logger.Error("Failed to send notification email", zap.Error(err), zap.String("uid", uid))
			} else {
				n.metrics.NotificationsSent.WithLabelValues("email").Inc()
			}
		}
	}

	if n.push == nil || len(tokens) == 0 {
		n.logger.Debug("No push tokens resolved for notification", zap.Int("recipients", len(recipientIDs)))
		return 0
	}

	accepted, err := n.push.SendMulticast(ctx, tokens, msg)
	if err != nil {
		n.logger.Error("Push multicast failed", zap.Error(err), zap.Int("tokens", len(tokens)))
		return 0
	}
	n.metrics.NotificationsSent.WithLabelValues("push").Add(float64(accepted))
	return accepted
}
