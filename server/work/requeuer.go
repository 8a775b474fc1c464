package work

import (
	"errors"
	"time"

	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server/models"
	"gorm.io/gorm"
)

const (
	STUCK_AFTER_MINUTES = 10
	REQUEUER_BACKOFF    = 5 * time.Second
)

// requeuer returns jobs that stayed too long in-progress (e.g. the process died
// while running them) to the enqueued queue.
type requeuer struct {
	stopChan chan struct{}
}

func newRequeuer() *requeuer {
	return &requeuer{stopChan: make(chan struct{})}
}

func (r *requeuer) start() {
	go r.loop()
}

func (r *requeuer) stop() {
	r.stopChan <- struct{}{}
}

func (r *requeuer) loop() {
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting in-progress job requeuer")
	for {
		select {
		case <-r.stopChan:
			logg.Infof("Stopping in-progress job requeuer")
			return
		case <-rateLimiter.C:
			job, err := models.LastJobLastUpdated(STUCK_AFTER_MINUTES, models.IN_PROGRESS_JOB)

			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(REQUEUER_BACKOFF)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			r.requeue(job)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *requeuer) requeue(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
	if err != nil {
		r.logError(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
		"enqueued_at":   time.Now(),
		"updated_at":    time.Now(),
	})
	if err != nil {
		r.logError(err)
		return
	}

	logg.Infof(colors.Prefix("job requeuer", false)+"job with id=%v requeued", job.ID)
}

func (r *requeuer) logError(err error) {
	logg.Error(colors.Prefix("job requeuer", true), err)
}
