package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

// newTestBus connects to CLIMEAI_TEST_REDIS_ADDR when set and to an
// in-process miniredis otherwise
func newTestBus(t *testing.T) *StreamsEventBus {
	t.Helper()

	addr := os.Getenv("CLIMEAI_TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	bus, err := NewStreamsEventBus(client, "test-"+uuid.New().String(), "consumer-1", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewStreamsEventBus: %v", err)
	}
	return bus
}

func TestGetStreamKey(t *testing.T) {
	if got := getStreamKey(domain.TopicChatEvents); got != "climeai:events:chat.events" {
		t.Fatalf("getStreamKey = %q", got)
	}
}

func TestBroadcastDeliversToEverySubscriber(t *testing.T) {
	topic := "test.broadcast." + uuid.New().String()
	bus := newTestBus(t).WithBroadcast(topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan domain.Event, 1)
	second := make(chan domain.Event, 1)
	for _, ch := range []chan domain.Event{first, second} {
		ch := ch
		if err := bus.Subscribe(ctx, topic, func(ctx context.Context, e domain.Event) error {
			ch <- e
			return nil
		}); err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
	}

	event := domain.Event{ID: "e-1", Type: domain.EventTypeChatCompleted, SessionID: "s-1", Timestamp: time.Now()}
	if err := bus.Publish(ctx, topic, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, ch := range []chan domain.Event{first, second} {
		select {
		case got := <-ch:
			if got.ID != "e-1" || got.SessionID != "s-1" {
				t.Fatalf("unexpected event %+v", got)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("subscriber did not receive the event")
		}
	}
}

func TestGroupDeliversOnce(t *testing.T) {
	topic := "test.group." + uuid.New().String()
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan domain.Event, 4)
	if err := bus.Subscribe(ctx, topic, func(ctx context.Context, e domain.Event) error {
		received <- e
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, topic, domain.Event{ID: "job-1", Type: domain.EventTypeChatRequested}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != "job-1" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("event not delivered")
	}

	select {
	case got := <-received:
		t.Fatalf("event delivered twice: %+v", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestBroadcastDeliversEventsPublishedRightAfterSubscribe(t *testing.T) {
	topic := "test.broadcast." + uuid.New().String()
	bus := newTestBus(t).WithBroadcast(topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bus.Publish(ctx, topic, domain.Event{ID: "before", Type: domain.EventTypeChatCompleted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	received := make(chan domain.Event, 8)
	if err := bus.Subscribe(ctx, topic, func(ctx context.Context, e domain.Event) error {
		received <- e
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// no pause: the reader may not have issued its first XREAD yet
	for _, id := range []string{"after-1", "after-2"} {
		if err := bus.Publish(ctx, topic, domain.Event{ID: id, Type: domain.EventTypeChatCompleted}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	for _, want := range []string{"after-1", "after-2"} {
		select {
		case got := <-received:
			if got.ID != want {
				t.Fatalf("expected %s, got %+v", want, got)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("event %s not delivered", want)
		}
	}

	// an idle blocking read must not skip what comes next
	time.Sleep(1200 * time.Millisecond)
	if err := bus.Publish(ctx, topic, domain.Event{ID: "after-idle", Type: domain.EventTypeChatCompleted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-received:
		if got.ID != "after-idle" {
			t.Fatalf("expected after-idle, got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("event after idle read not delivered")
	}
}

func TestBroadcastStartID(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()
	topic := "test.start." + uuid.New().String()
	key := getStreamKey(topic)

	id, err := bus.broadcastStartID(ctx, key)
	if err != nil {
		t.Fatalf("broadcastStartID: %v", err)
	}
	if id != "0-0" {
		t.Fatalf("expected 0-0 for a missing stream, got %s", id)
	}

	if err := bus.Publish(ctx, topic, domain.Event{ID: "e-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	last, err := bus.client.XRevRangeN(ctx, key, "+", "-", 1).Result()
	if err != nil || len(last) != 1 {
		t.Fatalf("XRevRangeN: %v %v", last, err)
	}

	id, err = bus.broadcastStartID(ctx, key)
	if err != nil {
		t.Fatalf("broadcastStartID: %v", err)
	}
	if id != last[0].ID {
		t.Fatalf("expected newest entry %s, got %s", last[0].ID, id)
	}
}
