package usecase

import (
	"context"
	"strings"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/geo"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// AlertEngine matches freshly created listings against user-saved alerts and
// notifies the owners of matching ones. It scans all users and their alerts
// per listing, a deliberate simplicity trade-off at this system's data
// volumes; scaling past that needs an indexing change, not a tweak here.
type AlertEngine struct {
	users    domain.UserRepository
	alerts   domain.AlertRepository
	notifier *Notifier
	logger   *logger.Logger
}

func NewAlertEngine(users domain.UserRepository, alerts domain.AlertRepository, notifier *Notifier, log *logger.Logger) *AlertEngine {
	return &AlertEngine{
		users:    users,
		alerts:   alerts,
		notifier: notifier,
		logger:   log.Named("AlertEngine"),
	}
}

// MatchesAlert applies the alert's predicates in order, short-circuiting on
// the first failing rule: category, then keywords, then geo radius. A listing
// without coordinates never matches an alert that specifies a radius.
func MatchesAlert(listing *domain.Listing, alert *domain.Alert) bool {
	if alert.CategoryID != "" && alert.CategoryID != listing.CategoryID {
		return false
	}

	if len(alert.Keywords) > 0 {
		text := strings.ToLower(listing.Title + " " + listing.Description)
		found := false
		for _, kw := range alert.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if alert.Location != nil && alert.RadiusKm > 0 {
		// geo.DistanceKm is +Inf when the listing has no coordinates, so the
		// comparison fails closed.
		if geo.DistanceKm(listing.Coordinates(), alert.Location) > alert.RadiusKm {
			return false
		}
	}

	return true
}

// NotifyMatches evaluates every user's active alerts against the listing and
// sends at most one notification per user, on that user's first matching
// alert, even when several of their alerts match.
func (e *AlertEngine) NotifyMatches(ctx context.Context, listing *domain.Listing) {
	users, err := e.users.List(ctx)
	if err != nil {
		e.logger.Error("Failed to list users for alert matching", zap.Error(err), zap.String("listing_id", listing.ID))
		return
	}

	notified := 0
	for _, user := range users {
		alerts, err := e.alerts.ActiveByOwner(ctx, user.UID)
		if err != nil {
			e.logger.Error("Failed to load alerts for user", zap.Error(err), zap.String("uid", user.UID))
			continue
		}

		for _, alert := range alerts {
			if !MatchesAlert(listing, alert) {
				continue
			}
			e.notifier.SendToUsers(ctx, []string{user.UID}, alertMatchMessage(listing))
			notified++
			break
		}
	}

	if notified > 0 {
		e.logger.Info("Alert matches notified",
			zap.String("listing_id", listing.ID),
			zap.Int("users", notified))
	}
}

func alertMatchMessage(listing *domain.Listing) domain.PushMessage {
	icon := defaultNotificationIcon
	if len(listing.Images) > 0 {
		icon = listing.Images[0]
	}
	return domain.PushMessage{
		Title: "New listing for your alert!",
		Body:  listing.Title,
		Icon:  icon,
		Link:  "/ad/" + listing.ID,
		Data:  map[string]string{"type": "NEW_AD_ALERT", "adId": listing.ID},
	}
}
