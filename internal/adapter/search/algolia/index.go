package algolia

import (
	"context"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Index synchronizes listing projections into a hosted Algolia index. The
// index is a best-effort secondary view: callers treat every failure here as
// log-and-continue, never as a reason to fail the triggering write.
type Index struct {
	index  *search.Index
	logger *logger.Logger
}

func NewIndex(appID, apiKey, indexName string, log *logger.Logger) *Index {
	client := search.NewClient(appID, apiKey)
	return &Index{
		index:  client.InitIndex(indexName),
		logger: log.Named("AlgoliaIndex"),
	}
}

// record is the searchable projection of a listing. Only the first image is
// indexed; geoloc rides along only when the listing has coordinates.
type record struct {
	ObjectID    string               `json:"objectID"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	CategoryID  string               `json:"categoryId"`
	Price       float64              `json:"price"`
	ImageURL    string               `json:"imageUrl,omitempty"`
	Status      domain.ListingStatus `json:"status"`
	SellerID    string               `json:"sellerId"`
	CreatedAt   int64                `json:"createdAt"`
	Geoloc      *geoloc              `json:"_geoloc,omitempty"`
}

type geoloc struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func newRecord(l *domain.Listing) record {
	rec := record{
		ObjectID:    l.ID,
		Title:       l.Title,
		Description: l.Description,
		CategoryID:  l.CategoryID,
		Price:       l.Price,
		Status:      l.Status,
		SellerID:    l.SellerID,
		CreatedAt:   l.CreatedAt.UnixMilli(),
	}
	if len(l.Images) > 0 {
		rec.ImageURL = l.Images[0]
	}
	if c := l.Coordinates(); c != nil {
		rec.Geoloc = &geoloc{Lat: c.Lat, Lng: c.Lng}
	}
	return rec
}

// Upsert writes the projection as a partial update that creates the record
// when absent. A partial update leaves index-side fields this service does
// not own untouched.
func (i *Index) Upsert(ctx context.Context, listing *domain.Listing) error {
	rec := newRecord(listing)
	_, err := i.index.PartialUpdateObject(rec, opt.CreateIfNotExists(true), ctx)
	if err != nil {
		i.logger.Error("Failed to upsert listing into search index",
			zap.Error(err), zap.String("listing_id", listing.ID))
		return fmt.Errorf("algolia upsert %s: %w", listing.ID, err)
	}
	i.logger.Debug("Listing indexed", zap.String("listing_id", listing.ID))
	return nil
}

func (i *Index) Remove(ctx context.Context, listingID string) error {
	_, err := i.index.DeleteObject(listingID, ctx)
	if err != nil {
		i.logger.Error("Failed to remove listing from search index",
			zap.Error(err), zap.String("listing_id", listingID))
		return fmt.Errorf("algolia delete %s: %w", listingID, err)
	}
	i.logger.Debug("Listing removed from index", zap.String("listing_id", listingID))
	return nil
}
