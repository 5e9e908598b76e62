package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserRepository implements domain.UserRepository using MongoDB. Users are
// keyed by their auth uid, not by a generated ObjectID.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(domain.CollectionUsers),
		logger:     log.Named("UserRepository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Account-created events are at-least-once; a redelivery must not
			// clobber a document that has since accumulated state.
			r.logger.Warn("User document already exists, create skipped", zap.String("uid", user.UID))
			return nil
		}
		r.logger.Error("Failed to insert user", zap.Error(err), zap.String("uid", user.UID))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, uid string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find user", zap.Error(err), zap.String("uid", uid))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return users, nil
}

func (r *UserRepository) FindLastSeenBefore(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"last_seen": bson.M{"$lt": cutoff}})
	if err != nil {
		r.logger.Error("Failed to query inactive users", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		r.logger.Error("Failed to delete user", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
