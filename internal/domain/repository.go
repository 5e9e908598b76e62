package domain

import (
	"context"
	"time"
)

// Collection names in the document store. Counter deltas address documents by
// (collection, id) pairs, so handlers share these with the repositories.
const (
	CollectionListings   = "listings"
	CollectionUsers      = "users"
	CollectionCategories = "categories"
	CollectionChats      = "chats"
)

// CounterDelta is one field-level increment against one document. Field is a
// dotted path into the document, e.g. "stats.favorites".
type CounterDelta struct {
	Collection string
	DocID      string
	Field      string
	Delta      int64
}

// CounterStore applies denormalized-counter updates.
//
// ApplyDeltas applies the whole set inside a single transactional unit: either
// all deltas are visible or none. The underlying primitive re-reads current
// values at commit time and retries on write conflict, so callers must not
// assume a delta lands on a value they read earlier in the handler. A delta
// whose target document no longer exists is a logged no-op, not an error.
//
// ApplyReview folds one rating into the target's review aggregate. The average
// is derived, not additive, so the aggregate is re-read and the average
// recomputed inside the same transaction. A target with no prior aggregate is
// treated as count=0, sum=0.
type CounterStore interface {
	ApplyDeltas(ctx context.Context, deltas []CounterDelta) error
	ApplyReview(ctx context.Context, collection, docID string, rating float64) error
}

type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*Listing, error)
	Delete(ctx context.Context, id string) error
	// ActiveImageURLs returns every image URL referenced by an active listing.
	// The orphaned-media sweep treats this as the live set.
	ActiveImageURLs(ctx context.Context) ([]string, error)
	// CountBySeller exists so the account sweep can report listings left
	// behind by a deleted seller.
	CountBySeller(ctx context.Context, sellerID string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, uid string) (*User, error)
	// List returns all users. The alert engine's full scan is a documented
	// limitation of the matching design, not something this port hides.
	List(ctx context.Context) ([]*User, error)
	FindLastSeenBefore(ctx context.Context, cutoff time.Time) ([]*User, error)
	Delete(ctx context.Context, uid string) error
}

type AlertRepository interface {
	ActiveByOwner(ctx context.Context, ownerID string) ([]*Alert, error)
}

type ChatRepository interface {
	FindByID(ctx context.Context, id string) (*Chat, error)
	SetLastMessage(ctx context.Context, chatID string, last LastMessage) error
}
