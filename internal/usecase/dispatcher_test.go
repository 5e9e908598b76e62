package usecase

import (
	"context"
	"testing"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcherForTest(counters *fakeCounterStore) *Dispatcher {
	users := newFakeUserRepo()
	notifier := NewNotifier(users, nil, nil, newTestMetrics(), newTestLogger())
	engine := NewAlertEngine(users, &fakeAlertRepo{}, notifier, newTestLogger())
	listingHandler := NewListingHandler(counters, newFakeListingRepo(), nil, nil, nil, engine, newTestLogger())
	messageHandler := NewMessageHandler(newFakeChatRepo(), users, notifier, newTestLogger())
	reviewHandler := NewReviewHandler(counters, newTestLogger())
	favoriteHandler := NewFavoriteHandler(counters, newFakeListingRepo(), notifier, newTestLogger())
	accountHandler := NewAccountHandler(users, newTestLogger())
	return NewDispatcher(listingHandler, messageHandler, reviewHandler, favoriteHandler, accountHandler, nil, newTestMetrics(), newTestLogger())
}

func TestDispatcher_MalformedPayloadDroppedWithoutError(t *testing.T) {
	d := newDispatcherForTest(newFakeCounterStore())

	assert.NoError(t, d.OnListingWritten(context.Background(), []byte("not json")),
		"a payload that can never decode is dropped, not redelivered")
	assert.NoError(t, d.OnReviewCreated(context.Background(), []byte(`{"targetId":""}`)))
}

func TestDispatcher_RoutesFavoritePayload(t *testing.T) {
	counters := newFakeCounterStore()
	d := newDispatcherForTest(counters)

	payload := []byte(`{"userId":"u1","listingId":"l1","existedBefore":false,"existsAfter":true}`)
	require.NoError(t, d.OnFavoriteWritten(context.Background(), payload))

	assert.EqualValues(t, 1, counters.value(domain.CollectionListings, "l1", "stats.favorites"))
}

func TestDispatcher_HandlerErrorPropagates(t *testing.T) {
	counters := newFakeCounterStore()
	counters.failWith = domain.ErrTransactionFailed
	d := newDispatcherForTest(counters)

	payload := []byte(`{"userId":"u1","listingId":"l1","existsAfter":true}`)
	assert.ErrorIs(t, d.OnFavoriteWritten(context.Background(), payload), domain.ErrTransactionFailed)
}

func TestDispatcher_MediaDisabledIsNoOp(t *testing.T) {
	d := newDispatcherForTest(newFakeCounterStore())
	assert.NoError(t, d.OnMediaFinalized(context.Background(), []byte(`{"bucket":"media","name":"ads/x.jpg"}`)))
}
