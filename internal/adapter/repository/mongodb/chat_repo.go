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

// ChatRepository implements domain.ChatRepository using MongoDB.
type ChatRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewChatRepository(db *mongo.Database, log *logger.Logger) *ChatRepository {
	return &ChatRepository{
		collection: db.Collection(domain.CollectionChats),
		logger:     log.Named("ChatRepository"),
	}
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find chat", zap.Error(err), zap.String("chat_id", id))
		return nil, fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	return &chat, nil
}

// SetLastMessage refreshes the chat's lastMessage projection. Redelivery of
// the same message event rewrites the same projection, so this is idempotent.
func (r *ChatRepository) SetLastMessage(ctx context.Context, chatID string, last domain.LastMessage) error {
	res, err := r.collection.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{
		"last_message": last,
		"updated_at":   last.SentAt,
	}})
	if err != nil {
		r.logger.Error("Failed to update chat projection", zap.Error(err), zap.String("chat_id", chatID))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
