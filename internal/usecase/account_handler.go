package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// AccountHandler seeds the user document for a freshly created auth account.
// Everything starts zeroed except notification opt-ins, which default on.
type AccountHandler struct {
	users  domain.UserRepository
	logger *logger.Logger
}

func NewAccountHandler(users domain.UserRepository, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		users:  users,
		logger: log.Named("AccountHandler"),
	}
}

func (h *AccountHandler) Handle(ctx context.Context, ev *event.AccountCreated) error {
	now := time.Now().UTC()
	user := &domain.User{
		UID:       ev.UID,
		Username:  usernameFor(ev),
		Email:     ev.Email,
		AvatarURL: ev.PhotoURL,
		Settings: domain.UserSettings{
			Notifications: domain.NotificationSettings{
				PushEnabled:  true,
				EmailEnabled: true,
			},
		},
		RegisteredAt: now,
		LastSeen:     now,
	}

	if err := h.users.Create(ctx, user); err != nil {
		h.logger.Error("Failed to create user document", zap.Error(err), zap.String("uid", ev.UID))
		return err
	}

	h.logger.Info("User document created", zap.String("uid", ev.UID), zap.String("username", user.Username))
	return nil
}

// usernameFor picks the first usable name: display name, the email's local
// part, then a uid-derived fallback.
func usernameFor(ev *event.AccountCreated) string {
	if ev.DisplayName != "" {
		return ev.DisplayName
	}
	if ev.Email != "" {
		if local, _, found := strings.Cut(ev.Email, "@"); found && local != "" {
			return local
		}
	}
	uid := ev.UID
	if len(uid) > 5 {
		uid = uid[:5]
	}
	return fmt.Sprintf("user_%s", uid)
}
