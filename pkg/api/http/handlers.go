package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/climeai/internal/application/agent"
	"github.com/aescanero/climeai/internal/application/workers"
	"github.com/aescanero/climeai/pkg/adapters/llm"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatService is the agent surface the API exposes
type ChatService interface {
	Chat(ctx context.Context, req agent.ChatRequest) (*agent.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]string, error)
	ActiveProvider() agent.ProviderInfo
}

// JobQueue accepts async chat jobs
type JobQueue interface {
	Submit(ctx context.Context, req agent.ChatRequest) (*workers.Job, error)
	Health() *workers.HealthMonitor
}

// Pinger checks database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobRequest is the body of an async job submission
type JobRequest struct {
	Message string `json:"message" binding:"required"`
}

// JobResponse represents an accepted job
type JobResponse struct {
	JobID       string `json:"job_id"`
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}

// SessionResponse represents a stored conversation
type SessionResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
	Total     int              `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const healthCheckTimeout = 2 * time.Second

// handleHealth reports database reachability, the selected provider and pool status
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}

	if s.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.database.Ping(ctx); err != nil {
			s.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if s.jobs != nil {
		pool := s.jobs.Health().GetStatus()
		checks["workers"] = pool
		if !pool.Healthy {
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"provider":  s.service.ActiveProvider(),
		"checks":    checks,
	})
}

// handleGetProvider reports which model client a chat would use now
func (s *Server) handleGetProvider(c *gin.Context) {
	info := s.service.ActiveProvider()
	c.JSON(http.StatusOK, gin.H{
		"provider": info.Provider,
		"model":    info.Model,
		"fallback": info.Provider == llm.FakeProviderName,
	})
}

// handleChat runs a synchronous chat turn
func (s *Server) handleChat(c *gin.Context) {
	var req agent.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()
	if s.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chatTimeout)
		defer cancel()
	}

	reply, err := s.service.Chat(ctx, req)
	if err != nil {
		s.writeError(c, "chat failed", err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// handleSubmitJob queues an async chat turn for a session
func (s *Server) handleSubmitJob(c *gin.Context) {
	if s.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{
				Code:    "JOBS_NOT_AVAILABLE",
				Message: "Worker pool is not configured",
			},
		})
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	job, err := s.jobs.Submit(c.Request.Context(), agent.ChatRequest{
		SessionID: c.Param("id"),
		Message:   req.Message,
	})
	if err != nil {
		s.writeError(c, "job submission failed", err)
		return
	}

	c.JSON(http.StatusAccepted, JobResponse{
		JobID:       job.ID,
		SessionID:   job.SessionID,
		Status:      "queued",
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListSessions lists stored session IDs
func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.service.ListSessions(c.Request.Context())
	if err != nil {
		s.writeError(c, "failed to list sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// handleGetSession returns a session's history
func (s *Server) handleGetSession(c *gin.Context) {
	sessionID := c.Param("id")

	messages, err := s.service.History(c.Request.Context(), sessionID)
	if err != nil {
		s.writeError(c, "failed to load session", err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		SessionID: sessionID,
		Messages:  messages,
		Total:     len(messages),
	})
}

// handleDeleteSession removes a session's history
func (s *Server) handleDeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := s.service.DeleteSession(c.Request.Context(), sessionID); err != nil {
		s.writeError(c, "failed to delete session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"status":     "deleted",
	})
}

// writeError maps service errors onto the error envelope
func (s *Server) writeError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, domain.ErrSessionNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, workers.ErrPoolStopped):
		status, code = http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, llm.ErrProviderStatus):
		status, code = http.StatusBadGateway, "PROVIDER_ERROR"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
