package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// Dispatcher binds raw subject payloads to their handlers. Decoding happens
// here so handlers only see validated events; a payload that fails decoding is
// logged and dropped rather than redelivered, since it can never succeed.
type Dispatcher struct {
	listings  *ListingHandler
	messages  *MessageHandler
	reviews   *ReviewHandler
	favorites *FavoriteHandler
	accounts  *AccountHandler
	media     *MediaPipeline
	metrics   *metrics.Manager
	logger    *logger.Logger
}

func NewDispatcher(
	listings *ListingHandler,
	messages *MessageHandler,
	reviews *ReviewHandler,
	favorites *FavoriteHandler,
	accounts *AccountHandler,
	media *MediaPipeline,
	m *metrics.Manager,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		listings:  listings,
		messages:  messages,
		reviews:   reviews,
		favorites: favorites,
		accounts:  accounts,
		media:     media,
		metrics:   m,
		logger:    log.Named("Dispatcher"),
	}
}

func (d *Dispatcher) OnListingWritten(ctx context.Context, data []byte) error {
	return run(ctx, d, "listing_written", data, event.DecodeListingWritten, d.listings.Handle)
}

func (d *Dispatcher) OnMessageCreated(ctx context.Context, data []byte) error {
	return run(ctx, d, "message_created", data, event.DecodeMessageCreated, d.messages.Handle)
}

func (d *Dispatcher) OnReviewCreated(ctx context.Context, data []byte) error {
	return run(ctx, d, "review_created", data, event.DecodeReviewCreated, d.reviews.Handle)
}

func (d *Dispatcher) OnFavoriteWritten(ctx context.Context, data []byte) error {
	return run(ctx, d, "favorite_written", data, event.DecodeFavoriteWritten, d.favorites.Handle)
}

func (d *Dispatcher) OnAccountCreated(ctx context.Context, data []byte) error {
	return run(ctx, d, "account_created", data, event.DecodeAccountCreated, d.accounts.Handle)
}

func (d *Dispatcher) OnMediaFinalized(ctx context.Context, data []byte) error {
	if d.media == nil {
		return nil
	}
	return run(ctx, d, "media_finalized", data, event.DecodeMediaFinalized, d.media.Handle)
}

func run[E any](ctx context.Context, d *Dispatcher, name string, data []byte, decode func([]byte) (*E, error), handle func(context.Context, *E) error) error {
	ev, err := decode(data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEvent) {
			d.logger.Error("Dropping malformed event", zap.String("handler", name), zap.Error(err))
			d.metrics.HandlerErrorsTotal.WithLabelValues(name).Inc()
			return nil
		}
		return err
	}

	start := time.Now()
	err = handle(ctx, ev)
	d.metrics.HandlerLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	d.metrics.EventsProcessedTotal.WithLabelValues(name).Inc()
	if err != nil {
		d.metrics.HandlerErrorsTotal.WithLabelValues(name).Inc()
		return err
	}
	return nil
}
