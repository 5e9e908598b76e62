package usecase

import (
	"context"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingHandler reacts to listing document writes: creation, update and
// deletion each get their own branch. Counter updates are the primary effect
// and run transactionally; index sync, cache invalidation, alert matching and
// media cleanup are secondary effects that log their failures and never fail
// the handler.
type ListingHandler struct {
	counters domain.CounterStore
	listings domain.ListingRepository
	index    domain.SearchIndex  // nil disables index sync
	cache    domain.ListingCache // nil disables cache invalidation
	media    domain.ObjectStore  // nil disables media cascade
	alerts   *AlertEngine
	logger   *logger.Logger
}

func NewListingHandler(
	counters domain.CounterStore,
	listings domain.ListingRepository,
	index domain.SearchIndex,
	cache domain.ListingCache,
	media domain.ObjectStore,
	alerts *AlertEngine,
	log *logger.Logger,
) *ListingHandler {
	return &ListingHandler{
		counters: counters,
		listings: listings,
		index:    index,
		cache:    cache,
		media:    media,
		alerts:   alerts,
		logger:   log.Named("ListingHandler"),
	}
}

func (h *ListingHandler) Handle(ctx context.Context, ev *event.ListingWritten) error {
	// Snapshots may omit the document id; the envelope is authoritative.
	if ev.Before != nil && ev.Before.ID == "" {
		ev.Before.ID = ev.ListingID
	}
	if ev.After != nil && ev.After.ID == "" {
		ev.After.ID = ev.ListingID
	}

	switch {
	case ev.IsCreate():
		return h.handleCreate(ctx, ev.ListingID, ev.After)
	case ev.IsDelete():
		return h.handleDelete(ctx, ev.ListingID, ev.Before)
	case ev.IsUpdate():
		return h.handleUpdate(ctx, ev.ListingID, ev.Before, ev.After)
	default:
		// Decoding rejects envelopes with no snapshot, so this is unreachable.
		return nil
	}
}

func (h *ListingHandler) handleCreate(ctx context.Context, id string, listing *domain.Listing) error {
	if result := domain.ValidateListing(listing); !result.IsValid {
		// Compensating delete: the write already landed, so the invalid
		// document is removed instead of having been blocked. No counters,
		// no index entry, no alerts for a listing that never validly existed.
		h.logger.Error("Invalid listing created, deleting",
			zap.String("listing_id", id),
			zap.Error(result.Err()))
		if err := h.listings.Delete(ctx, id); err != nil && err != domain.ErrNotFound {
			return fmt.Errorf("compensating delete of listing %s: %w", id, err)
		}
		return nil
	}

	err := h.counters.ApplyDeltas(ctx, []domain.CounterDelta{
		{Collection: domain.CollectionUsers, DocID: listing.SellerID, Field: "stats.ads_count", Delta: 1},
		{Collection: domain.CollectionCategories, DocID: listing.CategoryID, Field: "ad_count", Delta: 1},
	})
	if err != nil {
		h.logger.Error("Failed to apply create counters", zap.Error(err), zap.String("listing_id", id))
		return err
	}

	h.syncIndex(ctx, listing)
	h.invalidateCache(ctx, id)
	h.alerts.NotifyMatches(ctx, listing)

	h.logger.Info("Listing created", zap.String("listing_id", id), zap.String("seller_id", listing.SellerID))
	return nil
}

func (h *ListingHandler) handleDelete(ctx context.Context, id string, before *domain.Listing) error {
	err := h.counters.ApplyDeltas(ctx, []domain.CounterDelta{
		{Collection: domain.CollectionUsers, DocID: before.SellerID, Field: "stats.ads_count", Delta: -1},
		{Collection: domain.CollectionCategories, DocID: before.CategoryID, Field: "ad_count", Delta: -1},
	})
	if err != nil {
		h.logger.Error("Failed to apply delete counters", zap.Error(err), zap.String("listing_id", id))
		return err
	}

	if h.index != nil {
		if err := h.index.Remove(ctx, id); err != nil {
			h.logger.Error("Failed to remove search index entry", zap.Error(err), zap.String("listing_id", id))
		}
	}
	h.invalidateCache(ctx, id)

	if h.media != nil {
		prefix := ListingMediaPrefix(before.SellerID, id)
		if err := h.media.RemovePrefix(ctx, prefix); err != nil {
			h.logger.Error("Failed to remove listing media", zap.Error(err), zap.String("prefix", prefix))
		}
	}

	h.logger.Info("Listing deleted, cascades applied", zap.String("listing_id", id))
	return nil
}

func (h *ListingHandler) handleUpdate(ctx context.Context, id string, before, after *domain.Listing) error {
	if before.CategoryID != after.CategoryID {
		// Both category counters move in one transaction so no scan ever
		// observes the listing counted in two categories or none.
		err := h.counters.ApplyDeltas(ctx, []domain.CounterDelta{
			{Collection: domain.CollectionCategories, DocID: before.CategoryID, Field: "ad_count", Delta: -1},
			{Collection: domain.CollectionCategories, DocID: after.CategoryID, Field: "ad_count", Delta: 1},
		})
		if err != nil {
			h.logger.Error("Failed to move category counters", zap.Error(err), zap.String("listing_id", id))
			return err
		}
	}

	h.syncIndex(ctx, after)
	h.invalidateCache(ctx, id)
	return nil
}

func (h *ListingHandler) syncIndex(ctx context.Context, listing *domain.Listing) {
	if h.index == nil {
		return
	}
	if err := h.index.Upsert(ctx, listing); err != nil {
		h.logger.Error("Failed to sync listing into search index", zap.Error(err), zap.String("listing_id", listing.ID))
	}
}

func (h *ListingHandler) invalidateCache(ctx context.Context, id string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, id); err != nil {
		h.logger.Error("Failed to invalidate listing cache", zap.Error(err), zap.String("listing_id", id))
	}
}
