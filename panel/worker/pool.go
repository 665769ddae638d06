// Package worker provides an asynchronous worker pool for publishing audit
// events using the provided events.Publisher.
//
// The pool decouples audit publishing from the panel's HTTP hot path so that
// the browser-panel-Gateway interaction is fully transparent.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jlud7/goddard-gui/pkg/events"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256

	// publishTimeout bounds a single publish attempt so a slow broker
	// cannot wedge a worker forever.
	publishTimeout = 30 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Event *events.AuditEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives drained audit events.
	Publisher events.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool publishes audit events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Event == nil {
		p.logger.Error("job not queued, nil event")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("audit job queued",
			"event_id", job.Event.EventID,
			"event_type", job.Event.EventType,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"event_id", job.Event.EventID,
			"event_type", job.Event.EventType,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the panel HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("audit worker stopped", "worker_id", id)
}

// processJob publishes one audit event. Errors are logged, not propagated;
// an audit failure must never surface to the operation it records.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.config.Publisher.PublishAudit(ctx, job.Event); err != nil {
		p.logger.Error("async audit publish failed",
			"event_id", job.Event.EventID,
			"event_type", job.Event.EventType,
			"error", err,
		)
		return
	}

	p.logger.Debug("audit event published",
		"event_id", job.Event.EventID,
		"event_type", job.Event.EventType,
	)
}
