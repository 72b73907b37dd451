package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the collection holding one document per session
const CollectionName = "conversations"

// conversation is the stored document shape
type conversation struct {
	SessionID string           `bson:"_id"`
	Messages  []domain.Message `bson:"messages"`
	CreatedAt time.Time        `bson:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// ConversationStore implements ConversationStore using MongoDB
type ConversationStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewConversationStore creates a store on database's conversations collection
func NewConversationStore(client *mongo.Client, database string, logger *zap.Logger) *ConversationStore {
	return &ConversationStore{
		collection: client.Database(database).Collection(CollectionName),
		logger:     logger,
	}
}

// Append pushes messages onto a session document, creating it if needed
func (s *ConversationStore) Append(ctx context.Context, sessionID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"messages": bson.M{"$each": messages}},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := s.collection.UpdateByID(ctx, sessionID, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}

	s.logger.Debug("messages appended",
		zap.String("session_id", sessionID),
		zap.Int("count", len(messages)))

	return nil
}

// History returns a session's messages in order
func (s *ConversationStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var doc conversation
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return doc.Messages, nil
}

// Delete removes a session document
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Debug("session deleted", zap.String("session_id", sessionID))
	return nil
}

// List returns all session IDs
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
