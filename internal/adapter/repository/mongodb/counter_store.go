package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CounterStore applies denormalized-counter updates inside multi-document
// transactions. mongo's WithTransaction re-runs the callback on transient
// conflicts and re-reads current values each attempt, which is the only
// concurrency control this service relies on.
type CounterStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

func NewCounterStore(client *mongo.Client, db *mongo.Database, log *logger.Logger) *CounterStore {
	return &CounterStore{
		client: client,
		db:     db,
		logger: log.Named("CounterStore"),
	}
}

// ApplyDeltas applies every delta in one transaction. A delta whose target
// document is gone is skipped with a warning; the remaining deltas still
// commit. Exhausted retries surface as domain.ErrTransactionFailed.
func (s *CounterStore) ApplyDeltas(ctx context.Context, deltas []domain.CounterDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrRepository, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, d := range deltas {
			res, err := s.db.Collection(d.Collection).UpdateByID(sc, d.DocID,
				bson.M{"$inc": bson.M{d.Field: d.Delta}})
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				s.logger.Warn("Counter target missing, delta skipped",
					zap.String("collection", d.Collection),
					zap.String("doc_id", d.DocID),
					zap.String("field", d.Field),
					zap.Int64("delta", d.Delta))
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}
	return nil
}

// reviewStats mirrors only the aggregate fields; review targets are
// schemaless on this point, listings grow the fields on first review.
type reviewStats struct {
	Stats struct {
		Reviews domain.ReviewAggregate `bson:"reviews"`
	} `bson:"stats"`
}

// ApplyReview is a read-modify-write, not a blind increment: the average is
// derived from sum and count, so both are re-read inside the transaction on
// every (re)attempt.
func (s *CounterStore) ApplyReview(ctx context.Context, collection, docID string, rating float64) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrRepository, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var current reviewStats
		err := s.db.Collection(collection).FindOne(sc, bson.M{"_id": docID}).Decode(&current)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				s.logger.Warn("Review target missing, aggregate update skipped",
					zap.String("collection", collection),
					zap.String("doc_id", docID))
				return nil, nil
			}
			return nil, err
		}

		agg := current.Stats.Reviews // zero value covers targets with no prior aggregate
		agg.Count++
		agg.Sum += rating

		_, err = s.db.Collection(collection).UpdateByID(sc, docID, bson.M{"$set": bson.M{
			"stats.reviews":        agg,
			"stats.average_rating": agg.Sum / float64(agg.Count),
		}})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}
	return nil
}
