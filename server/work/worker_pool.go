package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zivilschutz/zsadmin/server/models"
)

type WorkerPool struct {
	handlers    map[string]Handler
	workers     []*worker
	requeuer    *requeuer
	purger      *purger
	concurrency int
	started     bool
	mu          sync.Mutex
}

func newWorkerPool(concurrency int, sleepBackoffs []time.Duration) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}

	wp := WorkerPool{
		handlers:    make(map[string]Handler),
		concurrency: concurrency,
		requeuer:    newRequeuer(),
		purger:      newPurger(),
	}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker(fmt.Sprint(i+1), sleepBackoffs))
	}

	return &wp
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *WorkerPool) registerHandler(name string, handler Handler) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return fmt.Errorf("cannot register handler %v on a running pool", name)
	}

	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}
	wp.handlers[name] = handler

	for _, worker := range wp.workers {
		err := worker.registerHandler(name, handler)
		if err != nil {
			return err
		}
	}
	return nil
}

// enqueue adds a job to the queue by creating a DB record based on 'JobParams' provided
func (wp *WorkerPool) enqueue(job JobParams) (*models.Job, error) {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return nil, fmt.Errorf("both a name & handler is required for a job")
	}

	argsAsJson, err := json.Marshal(job.Args)
	if err != nil {
		return nil, err
	}

	return models.CreateJob(job.Name, job.Handler, string(argsAsJson), job.Unique)
}

// start starts all workers in pool i.e the workers can start processing jobs
func (wp *WorkerPool) start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}
	wp.requeuer.start()
	wp.purger.start()
}

// stop stops all workers in pool i.e jobs will stop being processed
func (wp *WorkerPool) stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.started {
		return
	}

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			w.stop()
			wg.Done()
		}(w)
	}
	wg.Wait()

	wp.requeuer.stop()
	wp.purger.stop()
	wp.started = false
}
