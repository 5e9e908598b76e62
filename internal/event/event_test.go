package event

import (
	"testing"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListingWritten_Variants(t *testing.T) {
	create, err := DecodeListingWritten([]byte(`{"listingId":"l1","after":{"title":"Bike for sale"}}`))
	require.NoError(t, err)
	assert.True(t, create.IsCreate())
	assert.False(t, create.IsDelete())

	del, err := DecodeListingWritten([]byte(`{"listingId":"l1","before":{"title":"Bike for sale"}}`))
	require.NoError(t, err)
	assert.True(t, del.IsDelete())

	upd, err := DecodeListingWritten([]byte(`{"listingId":"l1","before":{"price":1},"after":{"price":2}}`))
	require.NoError(t, err)
	assert.True(t, upd.IsUpdate())
}

func TestDecodeListingWritten_Rejections(t *testing.T) {
	cases := map[string]string{
		"not json":    `{{`,
		"missing id":  `{"after":{"title":"x"}}`,
		"no snapshot": `{"listingId":"l1"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeListingWritten([]byte(payload))
			assert.ErrorIs(t, err, domain.ErrInvalidEvent)
		})
	}
}

func TestDecodeReviewCreated(t *testing.T) {
	ev, err := DecodeReviewCreated([]byte(`{"reviewId":"r1","targetType":"user","targetId":"u1","rating":4.5}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewTargetUser, ev.TargetType)
	assert.Equal(t, 4.5, ev.Rating)

	_, err = DecodeReviewCreated([]byte(`{"targetType":"planet","targetId":"u1"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	_, err = DecodeReviewCreated([]byte(`{"targetType":"user"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestDecodeFavoriteWritten_Transitions(t *testing.T) {
	add, err := DecodeFavoriteWritten([]byte(`{"userId":"u1","listingId":"l1","existsAfter":true}`))
	require.NoError(t, err)
	assert.True(t, add.IsAdd())
	assert.False(t, add.IsRemove())

	rm, err := DecodeFavoriteWritten([]byte(`{"userId":"u1","listingId":"l1","existedBefore":true}`))
	require.NoError(t, err)
	assert.True(t, rm.IsRemove())

	same, err := DecodeFavoriteWritten([]byte(`{"userId":"u1","listingId":"l1","existedBefore":true,"existsAfter":true}`))
	require.NoError(t, err)
	assert.False(t, same.IsAdd())
	assert.False(t, same.IsRemove())
}

func TestDecodeAccountCreated_RequiresUID(t *testing.T) {
	_, err := DecodeAccountCreated([]byte(`{"email":"a@b.c"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	ev, err := DecodeAccountCreated([]byte(`{"uid":"u1","displayName":"Alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "Alice", ev.DisplayName)
}

func TestDecodeMediaFinalized(t *testing.T) {
	ev, err := DecodeMediaFinalized([]byte(`{"bucket":"media","name":"ads/x.jpg","contentType":"image/jpeg","size":10,"metadata":{"resized":"true"}}`))
	require.NoError(t, err)
	assert.Equal(t, "true", ev.Metadata["resized"])

	_, err = DecodeMediaFinalized([]byte(`{"name":"ads/x.jpg"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestDecodeMessageCreated(t *testing.T) {
	ev, err := DecodeMessageCreated([]byte(`{"chatId":"c1","message":{"text":"hi","senderId":"u1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", ev.Message.Text)

	_, err = DecodeMessageCreated([]byte(`{"chatId":"c1","message":{"text":"hi"}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}
