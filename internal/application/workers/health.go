package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthMonitor periodically samples worker states and queue depth
type HealthMonitor struct {
	pool     *Pool
	interval time.Duration
	logger   *zap.Logger

	once     sync.Once
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// HealthStatus is a snapshot of the pool
type HealthStatus struct {
	TotalWorkers   int       `json:"total_workers"`
	IdleWorkers    int       `json:"idle_workers"`
	BusyWorkers    int       `json:"busy_workers"`
	StoppedWorkers int       `json:"stopped_workers"`
	QueuedJobs     int       `json:"queued_jobs"`
	QueueCapacity  int       `json:"queue_capacity"`
	Healthy        bool      `json:"healthy"`
	Timestamp      time.Time `json:"timestamp"`
}

// Saturated reports whether every worker is busy and the queue is full
func (s *HealthStatus) Saturated() bool {
	return s.TotalWorkers > 0 && s.BusyWorkers == s.TotalWorkers && s.QueuedJobs >= s.QueueCapacity
}

// NewHealthMonitor creates a health monitor sampling every interval
func NewHealthMonitor(pool *Pool, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		pool:     pool,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins sampling; later calls are no-ops
func (h *HealthMonitor) Start() {
	h.once.Do(func() {
		go h.run()
	})
}

// Stop ends sampling and waits for the loop to exit. Safe to call more than once.
func (h *HealthMonitor) Stop() {
	started := true
	h.once.Do(func() { started = false })

	h.stopOnce.Do(func() { close(h.stop) })

	if started {
		<-h.done
	}
}

func (h *HealthMonitor) run() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.sample()
		}
	}
}

// sample logs and records one snapshot
func (h *HealthMonitor) sample() {
	status := h.GetStatus()

	h.pool.metrics.RecordWorkerPoolStatus(status.IdleWorkers, status.BusyWorkers, status.StoppedWorkers)
	h.pool.metrics.SetQueueDepth(requestQueue, status.QueuedJobs)

	fields := []zap.Field{
		zap.Int("total", status.TotalWorkers),
		zap.Int("idle", status.IdleWorkers),
		zap.Int("busy", status.BusyWorkers),
		zap.Int("stopped", status.StoppedWorkers),
		zap.Int("queued", status.QueuedJobs),
	}

	switch {
	case !status.Healthy:
		h.logger.Warn("worker pool is unhealthy", fields...)
	case status.Saturated():
		h.logger.Warn("worker pool saturated, jobs are waiting on publishers", fields...)
	default:
		h.logger.Debug("worker pool health check", fields...)
	}
}

// GetStatus returns the current pool snapshot
func (h *HealthMonitor) GetStatus() *HealthStatus {
	status := &HealthStatus{
		QueuedJobs:    len(h.pool.jobs),
		QueueCapacity: cap(h.pool.jobs),
		Timestamp:     time.Now(),
	}

	for _, s := range h.pool.GetStatus() {
		status.TotalWorkers++
		switch s {
		case WorkerStatusIdle:
			status.IdleWorkers++
		case WorkerStatusBusy:
			status.BusyWorkers++
		case WorkerStatusStopped:
			status.StoppedWorkers++
		}
	}

	status.Healthy = status.TotalWorkers > 0 && status.StoppedWorkers == 0
	return status
}

// IsHealthy reports whether every worker is running
func (h *HealthMonitor) IsHealthy() bool {
	return h.GetStatus().Healthy
}
