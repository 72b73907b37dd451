package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aescanero/climeai/internal/application/agent"
	"github.com/aescanero/climeai/internal/application/workers"
	"github.com/aescanero/climeai/pkg/adapters/events/memory"
	"github.com/aescanero/climeai/pkg/adapters/llm"
	"github.com/aescanero/climeai/pkg/adapters/metrics/noop"
	storage "github.com/aescanero/climeai/pkg/adapters/storage/memory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type testEnv struct {
	server *Server
	store  *storage.ConversationStore
	pool   *workers.Pool
}

func newTestEnv(t *testing.T, environ map[string]string, db Pinger, token string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	store := storage.NewConversationStore()
	bus := memory.NewEventBus()
	selector := llm.NewSelector(llm.WithEnvironment(environ), llm.WithLogger(logger))
	svc := agent.NewService(selector, store, bus, noop.Collector{}, agent.DefaultToolbox(), agent.Config{
		MaxToolIterations: 4,
		MaxMessageLength:  100,
	}, logger)

	pool := workers.NewPool(workers.Options{Size: 1, QueueSize: 4}, bus, svc, noop.Collector{}, logger)
	if err := pool.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	server := NewServer(&Config{
		Service:     svc,
		Jobs:        pool,
		Database:    db,
		Gatherer:    prometheus.NewRegistry(),
		APIToken:    token,
		ChatTimeout: 5 * time.Second,
		Logger:      logger,
	})

	return &testEnv{server: server, store: store, pool: pool}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, stubPinger{}, "")

	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Status   string             `json:"status"`
		Provider agent.ProviderInfo `json:"provider"`
		Checks   map[string]interface{}
	}
	decode(t, w, &body)
	if body.Status != "healthy" || body.Provider.Provider != llm.FakeProviderName || body.Checks["database"] != "ok" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, stubPinger{err: errors.New("server selection timeout")}, "")

	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestGetProvider(t *testing.T) {
	env := newTestEnv(t, map[string]string{"MISTRAL_API_KEY": "k"}, nil, "")

	w := env.do(t, http.MethodGet, "/api/v1/provider", nil)
	var body map[string]interface{}
	decode(t, w, &body)

	if body["provider"] != llm.MistralProviderName || body["model"] != llm.MistralModel || body["fallback"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestChatAndSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, nil, "")

	w := env.do(t, http.MethodPost, "/api/v1/chat", agent.ChatRequest{SessionID: "s-1", Message: "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body %s", w.Code, w.Body.String())
	}
	var reply agent.ChatReply
	decode(t, w, &reply)
	if reply.Content != llm.FakeResponse || reply.SessionID != "s-1" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	w = env.do(t, http.MethodGet, "/api/v1/sessions", nil)
	var list struct {
		Sessions []string `json:"sessions"`
		Total    int      `json:"total"`
	}
	decode(t, w, &list)
	if list.Total != 1 || list.Sessions[0] != "s-1" {
		t.Fatalf("unexpected sessions %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/v1/sessions/s-1", nil)
	var session SessionResponse
	decode(t, w, &session)
	if session.Total != 2 {
		t.Fatalf("expected 2 stored messages, got %+v", session)
	}

	if w = env.do(t, http.MethodDelete, "/api/v1/sessions/s-1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, "/api/v1/sessions/s-1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestChatInvalidRequest(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, nil, "")

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing message", map[string]string{"session_id": "s"}},
		{"bad session id", agent.ChatRequest{SessionID: "has space", Message: "hi"}},
		{"message too long", agent.ChatRequest{Message: string(bytes.Repeat([]byte("a"), 101))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/chat", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp ErrorResponse
			decode(t, w, &resp)
			if resp.Error.Code != "INVALID_REQUEST" {
				t.Fatalf("unexpected error %+v", resp)
			}
		})
	}
}

func TestSubmitJob(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, nil, "")

	w := env.do(t, http.MethodPost, "/api/v1/sessions/s-job/jobs", JobRequest{Message: "later please"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var job JobResponse
	decode(t, w, &job)
	if job.JobID == "" || job.SessionID != "s-job" || job.Status != "queued" {
		t.Fatalf("unexpected job %+v", job)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if history, err := env.store.History(context.Background(), "s-job"); err == nil && len(history) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never persisted its turn")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAPIToken(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, nil, "s3cret")

	if w := env.do(t, http.MethodGet, "/api/v1/provider", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/provider", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status with wrong token = %d, want 401", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/provider", nil, "Authorization", "Bearer s3cret"); w.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/provider?token=s3cret", nil); w.Code != http.StatusOK {
		t.Fatalf("status with query token = %d, want 200", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, map[string]string{}, nil, "")

	if w := env.do(t, http.MethodGet, "/metrics", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
