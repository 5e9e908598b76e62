// Package event defines the closed set of document-change events this service
// reacts to. Payloads arrive as loosely-typed JSON on the wire; each event
// kind is decoded into its own variant and validated here at the boundary, so
// handler logic only ever sees a well-formed value.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
)

// NATS subjects, one per event kind.
const (
	SubjectListingWritten  = "listings.written"
	SubjectMessageCreated  = "chats.messages.created"
	SubjectReviewCreated   = "reviews.created"
	SubjectFavoriteWritten = "favorites.written"
	SubjectAccountCreated  = "accounts.created"
	SubjectMediaFinalized  = "media.finalized"
)

// ListingWritten carries before/after snapshots of one listing document.
// Creation has only After, deletion only Before, updates both.
type ListingWritten struct {
	ListingID string          `json:"listingId"`
	Before    *domain.Listing `json:"before,omitempty"`
	After     *domain.Listing `json:"after,omitempty"`
}

func (e *ListingWritten) IsCreate() bool { return e.Before == nil && e.After != nil }
func (e *ListingWritten) IsDelete() bool { return e.Before != nil && e.After == nil }
func (e *ListingWritten) IsUpdate() bool { return e.Before != nil && e.After != nil }

type MessageCreated struct {
	ChatID  string         `json:"chatId"`
	Message domain.Message `json:"message"`
}

type ReviewCreated struct {
	ReviewID   string              `json:"reviewId"`
	TargetType domain.ReviewTarget `json:"targetType"`
	TargetID   string              `json:"targetId"`
	Rating     float64             `json:"rating"`
	ReviewerID string              `json:"reviewerId"`
}

// FavoriteWritten carries before/after existence of one (user, listing)
// favorite. Existence is the whole payload.
type FavoriteWritten struct {
	UserID        string `json:"userId"`
	ListingID     string `json:"listingId"`
	ExistedBefore bool   `json:"existedBefore"`
	ExistsAfter   bool   `json:"existsAfter"`
}

func (e *FavoriteWritten) IsAdd() bool    { return !e.ExistedBefore && e.ExistsAfter }
func (e *FavoriteWritten) IsRemove() bool { return e.ExistedBefore && !e.ExistsAfter }

type AccountCreated struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// MediaFinalized is emitted by the object store once per finished object
// write, including writes this service performs itself. The media pipeline's
// guard relies on the Metadata map to break that loop.
type MediaFinalized struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func DecodeListingWritten(data []byte) (*ListingWritten, error) {
	var e ListingWritten
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectListingWritten, err)
	}
	if e.ListingID == "" {
		return nil, fieldErr(SubjectListingWritten, "listingId")
	}
	if e.Before == nil && e.After == nil {
		return nil, fmt.Errorf("%w: %s: neither snapshot present", domain.ErrInvalidEvent, SubjectListingWritten)
	}
	return &e, nil
}

func DecodeMessageCreated(data []byte) (*MessageCreated, error) {
	var e MessageCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectMessageCreated, err)
	}
	if e.ChatID == "" {
		return nil, fieldErr(SubjectMessageCreated, "chatId")
	}
	if e.Message.SenderID == "" {
		return nil, fieldErr(SubjectMessageCreated, "message.senderId")
	}
	return &e, nil
}

func DecodeReviewCreated(data []byte) (*ReviewCreated, error) {
	var e ReviewCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectReviewCreated, err)
	}
	if e.TargetID == "" {
		return nil, fieldErr(SubjectReviewCreated, "targetId")
	}
	if e.TargetType != domain.ReviewTargetUser && e.TargetType != domain.ReviewTargetListing {
		return nil, fmt.Errorf("%w: %s: unknown target type %q", domain.ErrInvalidEvent, SubjectReviewCreated, e.TargetType)
	}
	return &e, nil
}

func DecodeFavoriteWritten(data []byte) (*FavoriteWritten, error) {
	var e FavoriteWritten
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectFavoriteWritten, err)
	}
	if e.UserID == "" {
		return nil, fieldErr(SubjectFavoriteWritten, "userId")
	}
	if e.ListingID == "" {
		return nil, fieldErr(SubjectFavoriteWritten, "listingId")
	}
	return &e, nil
}

func DecodeAccountCreated(data []byte) (*AccountCreated, error) {
	var e AccountCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectAccountCreated, err)
	}
	if e.UID == "" {
		return nil, fieldErr(SubjectAccountCreated, "uid")
	}
	return &e, nil
}

func DecodeMediaFinalized(data []byte) (*MediaFinalized, error) {
	var e MediaFinalized
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, decodeErr(SubjectMediaFinalized, err)
	}
	if e.Bucket == "" {
		return nil, fieldErr(SubjectMediaFinalized, "bucket")
	}
	return &e, nil
}

func decodeErr(subject string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, subject, err)
}

func fieldErr(subject, field string) error {
	return fmt.Errorf("%w: %s: missing %s", domain.ErrInvalidEvent, subject, field)
}
