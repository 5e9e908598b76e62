package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

const messageBodyLimit = 100

// MessageHandler reacts to new chat messages: it refreshes the parent chat's
// lastMessage projection, then notifies every participant except the sender.
type MessageHandler struct {
	chats    domain.ChatRepository
	users    domain.UserRepository
	notifier *Notifier
	logger   *logger.Logger
}

func NewMessageHandler(chats domain.ChatRepository, users domain.UserRepository, notifier *Notifier, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		chats:    chats,
		users:    users,
		notifier: notifier,
		logger:   log.Named("MessageHandler"),
	}
}

func (h *MessageHandler) Handle(ctx context.Context, ev *event.MessageCreated) error {
	chat, err := h.chats.FindByID(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.logger.Warn("Parent chat not found for message", zap.String("chat_id", ev.ChatID))
			return nil
		}
		return fmt.Errorf("load chat %s: %w", ev.ChatID, err)
	}

	// Projection update first: it is the primary write, notification is a
	// secondary effect behind it.
	err = h.chats.SetLastMessage(ctx, ev.ChatID, domain.LastMessage{
		Text:     ev.Message.Text,
		SenderID: ev.Message.SenderID,
		SentAt:   ev.Message.SentAt,
		Read:     false,
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("update chat projection %s: %w", ev.ChatID, err)
	}

	recipients := make([]string, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		if p != ev.Message.SenderID {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	senderName := "Someone"
	senderAvatar := defaultNotificationIcon
	if sender, err := h.users.FindByID(ctx, ev.Message.SenderID); err == nil {
		if sender.Username != "" {
			senderName = sender.Username
		}
		if sender.AvatarURL != "" {
			senderAvatar = sender.AvatarURL
		}
	} else {
		h.logger.Warn("Failed to resolve message sender", zap.Error(err), zap.String("sender_id", ev.Message.SenderID))
	}

	h.notifier.SendToUsers(ctx, recipients, domain.PushMessage{
		Title: "New message from " + senderName,
		Body:  truncate(ev.Message.Text, messageBodyLimit),
		Icon:  senderAvatar,
		Link:  "/messages?chatId=" + ev.ChatID,
		Data:  map[string]string{"type": "NEW_MESSAGE", "chatId": ev.ChatID},
	})
	return nil
}

// truncate shortens s to at most limit runes, ellipsized.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
