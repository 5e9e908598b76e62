package usecase

import (
	"context"
	"errors"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// FavoriteHandler reacts to favorite toggles. The two counters (on the
// listing and on the toggling user) move together in one transaction;
// concurrent toggles by different users both land through the store's
// conflict retry. The seller notification on add is a secondary effect.
type FavoriteHandler struct {
	counters domain.CounterStore
	listings domain.ListingRepository
	notifier *Notifier
	logger   *logger.Logger
}

func NewFavoriteHandler(counters domain.CounterStore, listings domain.ListingRepository, notifier *Notifier, log *logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		counters: counters,
		listings: listings,
		notifier: notifier,
		logger:   log.Named("FavoriteHandler"),
	}
}

func (h *FavoriteHandler) Handle(ctx context.Context, ev *event.FavoriteWritten) error {
	var delta int64
	switch {
	case ev.IsAdd():
		delta = 1
	case ev.IsRemove():
		delta = -1
	default:
		// Existence did not change; nothing to count.
		return nil
	}

	err := h.counters.ApplyDeltas(ctx, []domain.CounterDelta{
		{Collection: domain.CollectionListings, DocID: ev.ListingID, Field: "stats.favorites", Delta: delta},
		{Collection: domain.CollectionUsers, DocID: ev.UserID, Field: "stats.favorites_count", Delta: delta},
	})
	if err != nil {
		h.logger.Error("Failed to apply favorite counters",
			zap.Error(err),
			zap.String("user_id", ev.UserID),
			zap.String("listing_id", ev.ListingID))
		return err
	}

	if ev.IsAdd() {
		h.notifySeller(ctx, ev)
	}
	return nil
}

func (h *FavoriteHandler) notifySeller(ctx context.Context, ev *event.FavoriteWritten) {
	listing, err := h.listings.FindByID(ctx, ev.ListingID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Error("Failed to load listing for favorite notification", zap.Error(err), zap.String("listing_id", ev.ListingID))
		}
		return
	}
	// No self-notification when a seller favorites their own listing.
	if listing.SellerID == "" || listing.SellerID == ev.UserID {
		return
	}

	h.notifier.SendToUsers(ctx, []string{listing.SellerID}, domain.PushMessage{
		Title: "New favorite",
		Body:  listing.Title + " was added to favorites",
		Icon:  defaultNotificationIcon,
		Link:  "/ad/" + listing.ID,
		Data:  map[string]string{"type": "FAVORITED", "adId": listing.ID},
	})
}
