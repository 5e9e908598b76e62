package usecase

import (
	"context"
	"testing"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushReadyUser(uid string) *domain.User {
	return &domain.User{
		UID:          uid,
		Username:     uid,
		DeviceTokens: []string{uid + "-token"},
		Settings: domain.UserSettings{
			Notifications: domain.NotificationSettings{PushEnabled: true},
		},
	}
}

func TestMatchesAlert_Keywords(t *testing.T) {
	alert := &domain.Alert{Keywords: []string{"bike"}, Active: true}

	matched := &domain.Listing{Title: "Mountain Bike for sale", Description: "barely used"}
	assert.True(t, MatchesAlert(matched, alert))

	missed := &domain.Listing{Title: "Electric Scooter", Description: "fast"}
	assert.False(t, MatchesAlert(missed, alert))

	inDescription := &domain.Listing{Title: "Two wheels", Description: "a great BIKE for the city"}
	assert.True(t, MatchesAlert(inDescription, alert), "keyword match is case-insensitive over title and description")
}

func TestMatchesAlert_Category(t *testing.T) {
	alert := &domain.Alert{CategoryID: "vehicles", Active: true}

	assert.True(t, MatchesAlert(&domain.Listing{CategoryID: "vehicles"}, alert))
	assert.False(t, MatchesAlert(&domain.Listing{CategoryID: "furniture"}, alert))
}

func TestMatchesAlert_GeoRadius(t *testing.T) {
	// Alert centered on a point; listings roughly 4.9km and 5.1km due north.
	center := &domain.Coordinates{Lat: 50.0, Lng: 10.0}
	alert := &domain.Alert{Location: center, RadiusKm: 5, Active: true}

	near := &domain.Listing{Location: &domain.Location{
		Coordinates: &domain.Coordinates{Lat: 50.0441, Lng: 10.0},
	}}
	far := &domain.Listing{Location: &domain.Location{
		Coordinates: &domain.Coordinates{Lat: 50.0459, Lng: 10.0},
	}}

	assert.True(t, MatchesAlert(near, alert))
	assert.False(t, MatchesAlert(far, alert))
}

func TestMatchesAlert_NoCoordinatesFailsClosed(t *testing.T) {
	alert := &domain.Alert{Location: &domain.Coordinates{Lat: 50, Lng: 10}, RadiusKm: 100, Active: true}
	assert.False(t, MatchesAlert(&domain.Listing{}, alert))
}

func TestMatchesAlert_RulesCombine(t *testing.T) {
	alert := &domain.Alert{
		CategoryID: "vehicles",
		Keywords:   []string{"bike"},
		Active:     true,
	}

	assert.True(t, MatchesAlert(&domain.Listing{CategoryID: "vehicles", Title: "City bike"}, alert))
	assert.False(t, MatchesAlert(&domain.Listing{CategoryID: "furniture", Title: "City bike"}, alert),
		"category rule rejects before keywords are consulted")
}

func TestAlertEngine_AtMostOneNotificationPerUser(t *testing.T) {
	user := pushReadyUser("watcher")
	users := newFakeUserRepo(user)
	alerts := &fakeAlertRepo{byOwner: map[string][]*domain.Alert{
		"watcher": {
			{ID: "a1", OwnerID: "watcher", Keywords: []string{"bike"}, Active: true},
			{ID: "a2", OwnerID: "watcher", CategoryID: "vehicles", Active: true},
		},
	}}
	push := &fakePushSender{acceptAll: true}
	notifier := NewNotifier(users, push, nil, newTestMetrics(), newTestLogger())
	engine := NewAlertEngine(users, alerts, notifier, newTestLogger())

	listing := &domain.Listing{ID: "l1", Title: "Mountain Bike", CategoryID: "vehicles"}
	engine.NotifyMatches(context.Background(), listing)

	require.Len(t, push.sent, 1, "both alerts match, but the user hears about it once")
	assert.Equal(t, []string{"watcher-token"}, push.sent[0].tokens)
	assert.Equal(t, "Mountain Bike", push.sent[0].msg.Body)
	assert.Equal(t, "/ad/l1", push.sent[0].msg.Link)
}

func TestAlertEngine_NoMatchesNoNotifications(t *testing.T) {
	users := newFakeUserRepo(pushReadyUser("watcher"))
	alerts := &fakeAlertRepo{byOwner: map[string][]*domain.Alert{
		"watcher": {{ID: "a1", Keywords: []string{"piano"}, Active: true}},
	}}
	push := &fakePushSender{acceptAll: true}
	notifier := NewNotifier(users, push, nil, newTestMetrics(), newTestLogger())
	engine := NewAlertEngine(users, alerts, notifier, newTestLogger())

	engine.NotifyMatches(context.Background(), &domain.Listing{ID: "l1", Title: "Mountain Bike"})

	assert.Empty(t, push.sent)
}

func TestAlertEngine_EachMatchingUserNotified(t *testing.T) {
	users := newFakeUserRepo(pushReadyUser("u1"), pushReadyUser("u2"), pushReadyUser("u3"))
	bikeAlert := func(owner string) []*domain.Alert {
		return []*domain.Alert{{OwnerID: owner, Keywords: []string{"bike"}, Active: true}}
	}
	alerts := &fakeAlertRepo{byOwner: map[string][]*domain.Alert{
		"u1": bikeAlert("u1"),
		"u3": bikeAlert("u3"),
	}}
	push := &fakePushSender{acceptAll: true}
	notifier := NewNotifier(users, push, nil, newTestMetrics(), newTestLogger())
	engine := NewAlertEngine(users, alerts, notifier, newTestLogger())

	engine.NotifyMatches(context.Background(), &domain.Listing{ID: "l1", Title: "Bike"})

	require.Len(t, push.sent, 2)
	assert.Equal(t, []string{"u1-token"}, push.sent[0].tokens)
	assert.Equal(t, []string{"u3-token"}, push.sent[1].tokens)
}
