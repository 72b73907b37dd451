package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/climeai/internal/application/agent"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestQueue = "chat_requests"

// ErrPoolStopped is returned by Submit after Shutdown
var ErrPoolStopped = errors.New("worker pool stopped")

// ChatService runs chat turns for the pool
type ChatService interface {
	Validate(req agent.ChatRequest) error
	Chat(ctx context.Context, req agent.ChatRequest) (*agent.ChatReply, error)
}

// Job is an accepted async chat request
type Job struct {
	ID        string `json:"job_id"`
	SessionID string `json:"session_id"`
}

// Options configures a Pool
type Options struct {
	Size                int
	QueueSize           int
	ChatTimeout         time.Duration
	HealthCheckInterval time.Duration
}

// Pool manages a pool of worker goroutines
type Pool struct {
	opts     Options
	eventBus ports.EventBus
	service  ChatService
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	health   *HealthMonitor

	jobs    chan domain.Event
	workers []*worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	// gate orders enqueue against Shutdown; once stopped is set nothing
	// more enters jobs
	gate    sync.RWMutex
	stopped bool
}

// worker represents a single worker goroutine
type worker struct {
	id      string
	pool    *Pool
	status  WorkerStatus
	mu      sync.RWMutex
	lastJob time.Time
}

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// NewPool creates a new worker pool
func NewPool(
	opts Options,
	eventBus ports.EventBus,
	service ChatService,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Pool {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.HealthCheckInterval <= 0 {
		opts.HealthCheckInterval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		opts:     opts,
		eventBus: eventBus,
		service:  service,
		metrics:  metrics,
		logger:   logger,
		jobs:     make(chan domain.Event, opts.QueueSize),
		workers:  make([]*worker, opts.Size),
		ctx:      ctx,
		cancel:   cancel,
	}

	pool.health = NewHealthMonitor(pool, opts.HealthCheckInterval, logger)

	return pool
}

// Start subscribes to the request topic and starts the workers
func (p *Pool) Start() error {
	p.logger.Info("starting worker pool",
		zap.Int("size", p.opts.Size),
		zap.Int("queue_size", p.opts.QueueSize))

	if err := p.eventBus.Subscribe(p.ctx, domain.TopicChatRequests, p.enqueue); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", domain.TopicChatRequests, err)
	}

	for i := 0; i < p.opts.Size; i++ {
		w := &worker{
			id:      fmt.Sprintf("worker-%d", i),
			pool:    p,
			status:  WorkerStatusIdle,
			lastJob: time.Now(),
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(p.ctx)
	}

	p.health.Start()

	p.logger.Info("worker pool started", zap.Int("workers", p.opts.Size))
	return nil
}

// Submit validates req and publishes it as an async job
func (p *Pool) Submit(ctx context.Context, req agent.ChatRequest) (*Job, error) {
	if p.ctx.Err() != nil {
		return nil, ErrPoolStopped
	}

	if err := p.service.Validate(req); err != nil {
		return nil, err
	}

	job := &Job{ID: uuid.New().String(), SessionID: req.SessionID}
	if job.SessionID == "" {
		job.SessionID = uuid.New().String()
	}

	event := domain.Event{
		ID:        job.ID,
		Type:      domain.EventTypeChatRequested,
		SessionID: job.SessionID,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": req.Message,
		},
	}

	if err := p.eventBus.Publish(ctx, domain.TopicChatRequests, event); err != nil {
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}

	p.logger.Debug("job queued",
		zap.String("job_id", job.ID),
		zap.String("session_id", job.SessionID))

	return job, nil
}

// Shutdown stops the workers and waits for running jobs to return. Jobs
// still queued are reported as failed on the chat topic.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.Stop()
	p.cancel()

	p.gate.Lock()
	p.stopped = true
	p.gate.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		dropped := p.drain()
		p.logger.Info("worker pool shut down complete", zap.Int("dropped_jobs", dropped))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout")
	}
}

// drain fails every job left in the queue and returns how many there were
func (p *Pool) drain() int {
	dropped := 0
	for {
		select {
		case event := <-p.jobs:
			dropped++
			p.logger.Warn("job dropped at shutdown",
				zap.String("job_id", event.ID),
				zap.String("session_id", event.SessionID))
			p.publish(event, domain.EventTypeJobFailed, map[string]interface{}{
				"job_id": event.ID,
				"error":  ErrPoolStopped.Error(),
			})
		default:
			p.metrics.SetQueueDepth(requestQueue, 0)
			return dropped
		}
	}
}

// GetStatus returns the status of all workers
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus)
	for _, w := range p.workers {
		if w == nil {
			continue
		}
		w.mu.RLock()
		status[w.id] = w.status
		w.mu.RUnlock()
	}
	return status
}

// Health returns the pool's health monitor
func (p *Pool) Health() *HealthMonitor {
	return p.health
}

// enqueue hands a request event to the workers, blocking while the queue is
// full. After Shutdown it returns ErrPoolStopped so the bus does not
// acknowledge the request.
func (p *Pool) enqueue(_ context.Context, event domain.Event) error {
	if event.Type != domain.EventTypeChatRequested {
		return nil
	}

	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- event:
		p.metrics.SetQueueDepth(requestQueue, len(p.jobs))
		return nil
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// run is the main worker loop
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()

	w.pool.logger.Info("worker started", zap.String("worker_id", w.id))

	for {
		select {
		case <-ctx.Done():
			w.setStatus(WorkerStatusStopped)
			w.pool.logger.Info("worker stopped", zap.String("worker_id", w.id))
			return
		case event := <-w.pool.jobs:
			w.pool.metrics.SetQueueDepth(requestQueue, len(w.pool.jobs))
			w.handleJob(ctx, event)
		}
	}
}

func (w *worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	w.status = status
	if status == WorkerStatusBusy {
		w.lastJob = time.Now()
	}
	w.mu.Unlock()
}

// handleJob runs one queued chat request
func (w *worker) handleJob(ctx context.Context, event domain.Event) {
	w.setStatus(WorkerStatusBusy)
	defer w.setStatus(WorkerStatusIdle)

	message, _ := event.Data["message"].(string)
	req := agent.ChatRequest{SessionID: event.SessionID, Message: message}

	w.pool.logger.Info("running job",
		zap.String("worker_id", w.id),
		zap.String("job_id", event.ID),
		zap.String("session_id", event.SessionID))

	if w.pool.opts.ChatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.pool.opts.ChatTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := w.pool.service.Chat(ctx, req)
	duration := time.Since(start)

	if err != nil {
		w.pool.logger.Error("job failed",
			zap.String("worker_id", w.id),
			zap.String("job_id", event.ID),
			zap.Duration("duration", duration),
			zap.Error(err))
		w.pool.publish(event, domain.EventTypeJobFailed, map[string]interface{}{
			"job_id": event.ID,
			"error":  err.Error(),
		})
		return
	}

	w.pool.logger.Info("job completed",
		zap.String("worker_id", w.id),
		zap.String("job_id", event.ID),
		zap.String("provider", reply.Provider),
		zap.Duration("duration", duration))
	w.pool.publish(event, domain.EventTypeJobCompleted, map[string]interface{}{
		"job_id":   event.ID,
		"content":  reply.Content,
		"provider": reply.Provider,
		"model":    reply.Model,
	})
}

// publish reports a job outcome on the chat topic
func (p *Pool) publish(job domain.Event, eventType domain.EventType, data map[string]interface{}) {
	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		SessionID: job.SessionID,
		Timestamp: time.Now(),
		Data:      data,
	}

	// the job context may already be expired
	if err := p.eventBus.Publish(context.Background(), domain.TopicChatEvents, event); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("job_id", job.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
