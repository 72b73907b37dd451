package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	mongodb "github.com/aescanero/climeai/pkg/adapters/database/mongo"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

// newTestStore needs a live server at CLIMEAI_TEST_MONGODB_URI
func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()

	uri := os.Getenv("CLIMEAI_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("CLIMEAI_TEST_MONGODB_URI not set")
	}

	logger := zaptest.NewLogger(t)
	provider := mongodb.NewProvider(uri, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close(context.Background()) })

	client, err := provider.Client(ctx)
	if err != nil {
		t.Fatalf("Client: %v", err)
	}

	db := "climeai_test_" + uuid.New().String()[:8]
	t.Cleanup(func() { _ = client.Database(db).Drop(context.Background()) })

	return NewConversationStore(client, db, logger)
}

func TestConversationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.History(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Append(ctx, "s-1",
		domain.NewMessage(domain.RoleUser, "hi"),
		domain.NewMessage(domain.RoleAssistant, "hello"),
	); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, "s-1", domain.NewMessage(domain.RoleUser, "again")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	history, err := store.History(ctx, "s-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 || history[2].Content != "again" {
		t.Fatalf("unexpected history %+v", history)
	}

	ids, err := store.List(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "s-1" {
		t.Fatalf("List = %v, %v", ids, err)
	}

	if err := store.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.History(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
