package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aescanero/climeai/pkg/domain"
)

// ConversationStore implements ConversationStore using an in-memory map.
// This is for testing and single-process development.
type ConversationStore struct {
	sessions map[string][]domain.Message
	mu       sync.RWMutex
}

// NewConversationStore creates a new in-memory conversation store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string][]domain.Message),
	}
}

// Append adds messages to the end of a session's history
func (s *ConversationStore) Append(ctx context.Context, sessionID string, messages ...domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], messages...)
	return nil
}

// History returns a copy of a session's messages
func (s *ConversationStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	out := make([]domain.Message, len(messages))
	copy(out, messages)
	return out, nil
}

// Delete removes a session
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// List returns all session IDs, sorted
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}
