package mongodb

import (
	"context"
	"fmt"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const alertCollectionName = "alerts"

// AlertRepository reads saved alerts. The matching engine never mutates them,
// so this repository is read-only on purpose.
type AlertRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewAlertRepository(db *mongo.Database, log *logger.Logger) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection(alertCollectionName),
		logger:     log.Named("AlertRepository"),
	}
}

func (r *AlertRepository) ActiveByOwner(ctx context.Context, ownerID string) ([]*domain.Alert, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID, "active": true})
	if err != nil {
		r.logger.Error("Failed to query alerts", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var alerts []*domain.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return alerts, nil
}
