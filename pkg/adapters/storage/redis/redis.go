package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "climeai:session:"

// ConversationStore implements ConversationStore using Redis lists
type ConversationStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewConversationStore creates a new Redis conversation store.
// Each append refreshes the session TTL; a zero ttl keeps sessions forever.
func NewConversationStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ConversationStore {
	return &ConversationStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Append pushes messages onto a session's list
func (s *ConversationStore) Append(ctx context.Context, sessionID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	key := getSessionKey(sessionID)

	values := make([]interface{}, len(messages))
	for i, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		values[i] = data
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}

	s.logger.Debug("messages appended",
		zap.String("session_id", sessionID),
		zap.Int("count", len(messages)))

	return nil
}

// History returns a session's messages in order
func (s *ConversationStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	key := getSessionKey(sessionID)

	items, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, nil
}

// Delete removes a session
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, getSessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Debug("session deleted", zap.String("session_id", sessionID))
	return nil
}

// List returns all session IDs with stored history
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id := strings.TrimPrefix(key, keyPrefix); id != "" && id != key {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// getSessionKey returns the Redis key for a session
func getSessionKey(sessionID string) string {
	return keyPrefix + sessionID
}
