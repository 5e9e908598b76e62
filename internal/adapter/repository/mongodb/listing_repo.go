package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ListingRepository implements domain.ListingRepository using MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(domain.CollectionListings),
		logger:     log.Named("ListingRepository"),
	}
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find listing", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return &listing, nil
}

// Delete removes the listing document. Used only by the validation-failure
// compensating path; the cascading cleanup stays with the handler.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ActiveImageURLs streams the image lists of all active listings. The media
// sweep compares this set against the object store.
func (r *ListingRepository) ActiveImageURLs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"images": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": domain.StatusActive}, opts)
	if err != nil {
		r.logger.Error("Failed to query active listing images", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var urls []string
	for cursor.Next(ctx) {
		var doc struct {
			Images []string `bson:"images"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
		}
		urls = append(urls, doc.Images...)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return urls, nil
}

func (r *ListingRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"seller_id": sellerID})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return count, nil
}
