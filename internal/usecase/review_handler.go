package usecase

import (
	"context"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ReviewHandler folds each new review into its target's aggregate rating.
// Unlike the plain counters, the average is derived state: the aggregate is
// re-read and recomputed inside the store's transaction, so redelivery or a
// concurrent review never applies a stale average.
type ReviewHandler struct {
	counters domain.CounterStore
	logger   *logger.Logger
}

func NewReviewHandler(counters domain.CounterStore, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		counters: counters,
		logger:   log.Named("ReviewHandler"),
	}
}

func (h *ReviewHandler) Handle(ctx context.Context, ev *event.ReviewCreated) error {
	collection := domain.CollectionListings
	if ev.TargetType == domain.ReviewTargetUser {
		collection = domain.CollectionUsers
	}

	if err := h.counters.ApplyReview(ctx, collection, ev.TargetID, ev.Rating); err != nil {
		h.logger.Error("Failed to apply review aggregate",
			zap.Error(err),
			zap.String("target_type", string(ev.TargetType)),
			zap.String("target_id", ev.TargetID))
		return err
	}

	h.logger.Info("Review aggregate updated",
		zap.String("target_type", string(ev.TargetType)),
		zap.String("target_id", ev.TargetID),
		zap.Float64("rating", ev.Rating))
	return nil
}
