package workerpool

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Task is one unit of work.
type Task func(ctx context.Context) error

// Pool is a bounded pool of goroutines. The multi-version store never
// blocks internally, so all waiting happens out here in the caller.
type Pool struct {
	name    string
	tasks   chan Task
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	stopped sync.Once

	logger    *zap.Logger
	completed atomic.Uint64
	failed    atomic.Uint64
}

// Config holds pool settings. Zero values get sensible defaults.
type Config struct {
	Name      string
	Workers   int
	QueueSize int
	Logger    *zap.Logger
}

// New starts a pool with the configured number of workers.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   cfg.Name,
		tasks:  make(chan Task, cfg.QueueSize),
		cancel: cancel,
		logger: cfg.Logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("worker pool started",
		zap.String("name", cfg.Name),
		zap.Int("workers", cfg.Workers),
		zap.Int("queue_size", cfg.QueueSize))
	return p
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := task(ctx); err != nil {
			p.failed.Inc()
			p.logger.Warn("task failed",
				zap.String("pool", p.name),
				zap.Int("worker", id),
				zap.Error(err))
			continue
		}
		p.completed.Inc()
	}
}

// Submit queues a task, blocking while the queue is full.
func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Wait closes the queue and blocks until every queued task has run.
func (p *Pool) Wait() {
	p.stopped.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
	p.cancel()
	p.logger.Info("worker pool drained",
		zap.String("name", p.name),
		zap.Uint64("completed", p.completed.Load()),
		zap.Uint64("failed", p.failed.Load()))
}

// Completed reports how many tasks finished without error.
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}

// Failed reports how many tasks returned an error.
func (p *Pool) Failed() uint64 {
	return p.failed.Load()
}
