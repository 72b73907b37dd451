package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds chat behaviour settings
type Config struct {
	SystemPrompt      string
	MaxToolIterations int
	MaxMessageLength  int
}

// ChatReply is the outcome of a chat turn
type ChatReply struct {
	SessionID  string            `json:"session_id"`
	Content    string            `json:"content"`
	Provider   string            `json:"provider"`
	Model      string            `json:"model"`
	ToolCalls  []domain.ToolCall `json:"tool_calls,omitempty"`
	Usage      domain.Usage      `json:"usage"`
	Iterations int               `json:"iterations"`
}

// ProviderInfo describes the model client the selector currently picks
type ProviderInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Service runs chat turns
type Service struct {
	selector  ports.ClientSelector
	store     ports.ConversationStore
	eventBus  ports.EventBus
	metrics   ports.MetricsCollector
	toolbox   *Toolbox
	validator *Validator
	logger    *zap.Logger
	cfg       Config
}

// NewService creates a chat service
func NewService(
	selector ports.ClientSelector,
	store ports.ConversationStore,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	toolbox *Toolbox,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if toolbox == nil {
		toolbox = NewToolbox()
	}
	return &Service{
		selector:  selector,
		store:     store,
		eventBus:  eventBus,
		metrics:   metrics,
		toolbox:   toolbox,
		validator: NewValidator(cfg.MaxMessageLength),
		logger:    logger,
		cfg:       cfg,
	}
}

// Validate checks a chat request without running it
func (s *Service) Validate(req ChatRequest) error {
	return s.validator.Validate(req)
}

// Chat runs one user turn and persists it
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if err := s.validator.Validate(req); err != nil {
		s.metrics.IncChatRequests("invalid")
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.metrics.IncChatRequests("error")
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	userMessage := domain.NewMessage(domain.RoleUser, req.Message)
	turn := []domain.Message{userMessage}

	client := s.selector.Select(s.toolbox.Descriptors())
	reply := &ChatReply{
		SessionID: sessionID,
		Provider:  client.Provider(),
		Model:     client.Model(),
	}

	s.logger.Info("chat turn started",
		zap.String("session_id", sessionID),
		zap.String("provider", reply.Provider),
		zap.String("model", reply.Model),
		zap.Int("history", len(history)))

	for {
		reply.Iterations++

		resp, err := client.Invoke(ctx, s.conversation(history, turn))
		if err != nil {
			s.metrics.IncChatRequests("error")
			s.publish(ctx, domain.EventTypeChatFailed, sessionID, map[string]interface{}{
				"provider": reply.Provider,
				"error":    err.Error(),
			})
			return nil, fmt.Errorf("model invocation failed: %w", err)
		}

		turn = append(turn, resp.Message())
		reply.Content = resp.Content
		reply.Usage.InputTokens += resp.Usage.InputTokens
		reply.Usage.OutputTokens += resp.Usage.OutputTokens

		if len(resp.ToolCalls) == 0 {
			break
		}
		if reply.Iterations > s.cfg.MaxToolIterations {
			s.logger.Warn("tool iteration limit reached",
				zap.String("session_id", sessionID),
				zap.Int("limit", s.cfg.MaxToolIterations))
			turn[len(turn)-1].ToolCalls = nil
			break
		}

		for _, call := range resp.ToolCalls {
			turn = append(turn, domain.ToolResultMessage(call, s.runTool(ctx, sessionID, call)))
			reply.ToolCalls = append(reply.ToolCalls, call)
		}
	}

	if err := s.store.Append(ctx, sessionID, turn...); err != nil {
		s.metrics.IncChatRequests("error")
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	s.metrics.IncChatRequests("success")
	s.publish(ctx, domain.EventTypeChatCompleted, sessionID, map[string]interface{}{
		"provider":   reply.Provider,
		"model":      reply.Model,
		"content":    reply.Content,
		"iterations": reply.Iterations,
	})

	s.logger.Info("chat turn completed",
		zap.String("session_id", sessionID),
		zap.Int("iterations", reply.Iterations),
		zap.Int("tool_calls", len(reply.ToolCalls)))

	return reply, nil
}

// History returns the stored messages of a session
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, sessionID)
}

// DeleteSession removes a session's history
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

// ListSessions returns the IDs of all stored sessions
func (s *Service) ListSessions(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// ActiveProvider reports the client the selector would pick right now. It
// does not count as a provider selection.
func (s *Service) ActiveProvider() ProviderInfo {
	client := s.selector.Peek(nil)
	return ProviderInfo{Provider: client.Provider(), Model: client.Model()}
}

// conversation builds the messages sent to the model
func (s *Service) conversation(history, turn []domain.Message) []domain.Message {
	messages := make([]domain.Message, 0, len(history)+len(turn)+1)
	if s.cfg.SystemPrompt != "" {
		messages = append(messages, domain.NewMessage(domain.RoleSystem, s.cfg.SystemPrompt))
	}
	messages = append(messages, history...)
	return append(messages, turn...)
}

// runTool executes a tool call; failures are reported back to the model as text
func (s *Service) runTool(ctx context.Context, sessionID string, call domain.ToolCall) string {
	start := time.Now()
	output, err := s.toolbox.Execute(ctx, call)
	s.metrics.ObserveToolDuration(call.Name, time.Since(start))

	if err != nil {
		s.metrics.IncToolExecutions(call.Name, "error")
		s.logger.Warn("tool execution failed",
			zap.String("session_id", sessionID),
			zap.String("tool", call.Name),
			zap.Error(err))
		return "error: " + err.Error()
	}

	s.metrics.IncToolExecutions(call.Name, "success")
	s.publish(ctx, domain.EventTypeToolExecuted, sessionID, map[string]interface{}{
		"tool":   call.Name,
		"output": output,
	})
	return output
}

// publish sends an event on the chat topic; failures are logged only
func (s *Service) publish(ctx context.Context, eventType domain.EventType, sessionID string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data:      data,
	}

	if err := s.eventBus.Publish(ctx, domain.TopicChatEvents, event); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("session_id", sessionID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
