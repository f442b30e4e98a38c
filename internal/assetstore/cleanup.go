package assetstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	internal "github.com/frahmantamala/company-management/internal"
)

const deleteTimeout = 30 * time.Second

// Deleter is the slice of the store the cleanup pool needs.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

type CleanupJob struct {
	Key    string
	Reason string
}

type cleanupWorker struct {
	id         int
	workerPool chan chan CleanupJob
	jobChannel chan CleanupJob
	logger     *slog.Logger
}

func newCleanupWorker(id int, workerPool chan chan CleanupJob, logger *slog.Logger) *cleanupWorker {
	return &cleanupWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan CleanupJob),
		logger:     logger,
	}
}

func (w *cleanupWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(CleanupJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("cleanup worker processing job", "worker_id", w.id, "key", job.Key)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("cleanup worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// CleanupPool deletes replaced or orphaned assets in the background.
// Deletions are fire-and-log: a failed cleanup leaves an orphan in the
// bucket and a log line, never an error on the request path.
type CleanupPool struct {
	store  Deleter
	logger *slog.Logger

	jobQueue   chan CleanupJob
	workerPool chan chan CleanupJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type CleanupConfig struct {
	MaxWorkers   int
	JobQueueSize int
}

func NewCleanupPool(store Deleter, cfg CleanupConfig, logger *slog.Logger) *CleanupPool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := cfg.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	pool := &CleanupPool{
		store:      store,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan CleanupJob, jobQueueSize),
		workerPool: make(chan chan CleanupJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	pool.startWorkers()

	return pool
}

func (p *CleanupPool) startWorkers() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			worker := newCleanupWorker(i, p.workerPool, p.logger)
			worker.start(p.ctx, &p.wg, p.processJob)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("asset cleanup pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *CleanupPool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					return
				}
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Enqueue schedules a best-effort deletion. A full queue drops the job with
// a warning instead of blocking the request path.
func (p *CleanupPool) Enqueue(key, reason string) {
	if key == "" {
		return
	}

	job := CleanupJob{Key: key, Reason: reason}

	select {
	case p.jobQueue <- job:
		p.logger.Debug("asset cleanup queued", "key", key, "reason", reason)
	default:
		p.logger.Warn("asset cleanup queue full, dropping job",
			"key", key,
			"reason", reason,
			"queue_capacity", cap(p.jobQueue))
	}
}

func (p *CleanupPool) processJob(job CleanupJob) {
	ctx, cancel := internal.WithTimeout(p.ctx, deleteTimeout)
	defer cancel()

	err := p.store.Delete(ctx, job.Key)
	switch {
	case err == nil:
		p.logger.Info("orphaned asset removed", "key", job.Key, "reason", job.Reason)
	case errors.Is(err, ErrNotFound):
		p.logger.Info("orphaned asset already gone", "key", job.Key, "reason", job.Reason)
	default:
		// Logged, not retried: the row state already committed and the
		// divergence is an accepted consistency gap.
		p.logger.Error("asset cleanup failed, orphan left behind",
			"key", job.Key,
			"reason", job.Reason,
			"error", err)
	}
}

func (p *CleanupPool) Shutdown() {
	p.logger.Info("shutting down asset cleanup pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("asset cleanup pool shutdown complete")
}
