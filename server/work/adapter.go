package work

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/zivilschutz/zsadmin/server/cron"
	"github.com/zivilschutz/zsadmin/server/models"
)

const MAX_CONCURRENCY = 1

var DefaultSleepBackoffs = []time.Duration{0, 10 * time.Second, 60 * time.Second, 120 * time.Second}

type Options struct {
	Concurrency int

	// SleepBackoffs are the successive waits between polls of an empty queue.
	SleepBackoffs []time.Duration
}

type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	pool          *WorkerPool
}

func NewWorkerAdapter(timeZone string, opts Options) *WorkerPoolAdapter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = MAX_CONCURRENCY
	}
	if len(opts.SleepBackoffs) == 0 {
		opts.SleepBackoffs = DefaultSleepBackoffs
	}

	return &WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZone),
		pool:          newWorkerPool(opts.Concurrency, opts.SleepBackoffs),
	}
}

// Start starts the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Start() error {
	logg.Info("Starting cron scheduler & worker pool")
	adapter.cronScheduler.StartAsync()
	adapter.pool.start()

	return nil
}

// Stop stops the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Stop() error {
	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()
	adapter.pool.stop()

	return nil
}

// Register binds a name to a handler. Handlers must be registered before Start.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.pool.registerHandler(name, handler)
}

// Perform sends a new job to the queue, now - to be executed as soon as a worker is available
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	logg.Infof("Enqueuing job: %v", job.Name)

	_, err := adapter.pool.enqueue(job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error enqueuing job: %v, %v", job.Name, err)
	}

	return nil
}

// PeriodicallyPerform adds a job to the queue (to be executed)
// periodically, based on the 'cronExpression' expression provided
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				err := adapter.Perform(job)
				if err != nil {
					logg.Error(err)
				}
			},
			job,
		)
	if err != nil {
		return fmt.Errorf("error scheduling job %v with %q: %v", job.Name, cronExpression, err)
	}

	return nil
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(jobName string) {
	adapter.cronScheduler.RemoveByTag(jobName)
}

// Scheduler exposes the cron scheduler so other components can add their own periodic tasks.
func (adapter *WorkerPoolAdapter) Scheduler() *gocron.Scheduler {
	return adapter.cronScheduler
}
