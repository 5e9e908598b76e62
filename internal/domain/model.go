package domain

import "time"

type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusRemoved ListingStatus = "removed"
)

// Coordinates is a WGS84 point. Listings and alerts may carry one; both sides
// of a geo comparison must be present for a distance to be defined.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Location struct {
	Address     string       `json:"address" bson:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// ListingStats are denormalized counters maintained by the reaction handlers,
// never recomputed by scan.
type ListingStats struct {
	Views     int64 `json:"views" bson:"views"`
	Favorites int64 `json:"favorites" bson:"favorites"`
}

// Listing is a classified ad. The document store is the source of truth; the
// search index holds a best-effort projection of it.
type Listing struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	CategoryID  string        `json:"categoryId" bson:"category_id"`
	Price       float64       `json:"price" bson:"price"`
	Images      []string      `json:"images,omitempty" bson:"images,omitempty"`
	Location    *Location     `json:"location,omitempty" bson:"location,omitempty"`
	SellerID    string        `json:"sellerId" bson:"seller_id"`
	Status      ListingStatus `json:"status" bson:"status"`
	Stats       ListingStats  `json:"stats" bson:"stats"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

// Coordinates returns the listing's point, or nil when it has no usable location.
func (l *Listing) Coordinates() *Coordinates {
	if l == nil || l.Location == nil {
		return nil
	}
	return l.Location.Coordinates
}

// ReviewAggregate holds the running review tally for a user or listing.
// AverageRating is derived (Sum/Count), so it is recomputed inside the same
// transaction that bumps Count and Sum, never blind-incremented.
type ReviewAggregate struct {
	Count int64   `json:"count" bson:"count"`
	Sum   float64 `json:"sum" bson:"sum"`
}

type UserStats struct {
	AdsCount       int64           `json:"adsCount" bson:"ads_count"`
	FavoritesCount int64           `json:"favoritesCount" bson:"favorites_count"`
	AverageRating  float64         `json:"averageRating" bson:"average_rating"`
	Reviews        ReviewAggregate `json:"reviews" bson:"reviews"`
}

type NotificationSettings struct {
	PushEnabled  bool `json:"pushEnabled" bson:"push_enabled"`
	EmailEnabled bool `json:"emailEnabled" bson:"email_enabled"`
}

type UserSettings struct {
	Notifications NotificationSettings `json:"notifications" bson:"notifications"`
}

type User struct {
	UID          string       `json:"uid" bson:"_id"`
	Username     string       `json:"username" bson:"username"`
	Email        string       `json:"email" bson:"email"`
	AvatarURL    string       `json:"avatarUrl" bson:"avatar_url"`
	Stats        UserStats    `json:"stats" bson:"stats"`
	Settings     UserSettings `json:"settings" bson:"settings"`
	DeviceTokens []string     `json:"deviceTokens,omitempty" bson:"device_tokens,omitempty"`
	RegisteredAt time.Time    `json:"registeredAt" bson:"registered_at"`
	LastSeen     time.Time    `json:"lastSeen" bson:"last_seen"`
}

// PushReady reports whether the user can receive push notifications at all:
// opted in and at least one registered device token.
func (u *User) PushReady() bool {
	return u != nil && u.Settings.Notifications.PushEnabled && len(u.DeviceTokens) > 0
}

// Alert is a user-saved search predicate evaluated against newly created
// listings. The matching engine consumes alerts read-only.
type Alert struct {
	ID         string       `json:"id" bson:"_id,omitempty"`
	OwnerID    string       `json:"ownerId" bson:"owner_id"`
	Keywords   []string     `json:"keywords,omitempty" bson:"keywords,omitempty"`
	CategoryID string       `json:"categoryId,omitempty" bson:"category_id,omitempty"`
	Location   *Coordinates `json:"location,omitempty" bson:"location,omitempty"`
	RadiusKm   float64      `json:"radiusKm,omitempty" bson:"radius_km,omitempty"`
	Active     bool         `json:"active" bson:"active"`
}

// ReviewTarget names the kind of document a review's rating folds into.
// Reviews themselves are append-only inputs this service never stores.
type ReviewTarget string

const (
	ReviewTargetUser    ReviewTarget = "user"
	ReviewTargetListing ReviewTarget = "listing"
)

type LastMessage struct {
	Text     string    `json:"text" bson:"text"`
	SenderID string    `json:"senderId" bson:"sender_id"`
	SentAt   time.Time `json:"sentAt" bson:"sent_at"`
	Read     bool      `json:"read" bson:"read"`
}

type Chat struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	Participants []string     `json:"participants" bson:"participants"`
	LastMessage  *LastMessage `json:"lastMessage,omitempty" bson:"last_message,omitempty"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updated_at"`
}

type Message struct {
	ID       string    `json:"id" bson:"_id,omitempty"`
	ChatID   string    `json:"chatId" bson:"chat_id"`
	Text     string    `json:"text" bson:"text"`
	SenderID string    `json:"senderId" bson:"sender_id"`
	SentAt   time.Time `json:"sentAt" bson:"sent_at"`
}
