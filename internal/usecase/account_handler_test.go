package usecase

import (
	"context"
	"testing"

	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_SeedsUserDocument(t *testing.T) {
	users := newFakeUserRepo()
	h := NewAccountHandler(users, newTestLogger())

	ev := &event.AccountCreated{UID: "uid-123", Email: "alice@example.com", DisplayName: "Alice", PhotoURL: "https://cdn.test/a.png"}
	require.NoError(t, h.Handle(context.Background(), ev))

	user, err := users.FindByID(context.Background(), "uid-123")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "https://cdn.test/a.png", user.AvatarURL)
	assert.True(t, user.Settings.Notifications.PushEnabled)
	assert.True(t, user.Settings.Notifications.EmailEnabled)
	assert.Zero(t, user.Stats.AdsCount)
	assert.Zero(t, user.Stats.Reviews.Count)
	assert.Empty(t, user.DeviceTokens)
	assert.False(t, user.RegisteredAt.IsZero())
	assert.Equal(t, user.RegisteredAt, user.LastSeen)
}

func TestAccountHandler_UsernameFallbacks(t *testing.T) {
	tests := []struct {
		name string
		ev   *event.AccountCreated
		want string
	}{
		{"display name wins", &event.AccountCreated{UID: "u1", DisplayName: "Bob", Email: "bob@example.com"}, "Bob"},
		{"email local part", &event.AccountCreated{UID: "u2", Email: "carol@example.com"}, "carol"},
		{"uid fallback", &event.AccountCreated{UID: "abcdef123"}, "user_abcde"},
		{"short uid fallback", &event.AccountCreated{UID: "ab"}, "user_ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			h := NewAccountHandler(users, newTestLogger())
			require.NoError(t, h.Handle(context.Background(), tt.ev))
			user, err := users.FindByID(context.Background(), tt.ev.UID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Username)
		})
	}
}

func TestAccountHandler_RedeliveryDoesNotOverwrite(t *testing.T) {
	users := newFakeUserRepo()
	h := NewAccountHandler(users, newTestLogger())

	ev := &event.AccountCreated{UID: "u1", DisplayName: "First"}
	require.NoError(t, h.Handle(context.Background(), ev))

	existing, _ := users.FindByID(context.Background(), "u1")
	existing.Username = "renamed"

	require.NoError(t, h.Handle(context.Background(), ev))
	user, _ := users.FindByID(context.Background(), "u1")
	assert.Equal(t, "renamed", user.Username)
}
