package work

import (
	"time"

	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server/models"
)

var (
	PurgeInterval       = time.Hour
	SuccessfulJobMaxAge = 7 * 24 * time.Hour
)

// purger deletes successful jobs older than SuccessfulJobMaxAge.
// Dead jobs are kept for inspection.
type purger struct {
	stopChan chan struct{}
}

func newPurger() *purger {
	return &purger{stopChan: make(chan struct{})}
}

func (p *purger) start() {
	go p.loop()
}

func (p *purger) stop() {
	p.stopChan <- struct{}{}
}

func (p *purger) loop() {
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-rateLimiter.C:
			p.purge(time.Now())
			rateLimiter.Reset(PurgeInterval)
		}
	}
}

func (p *purger) purge(now time.Time) {
	deleted, err := models.DeleteJobsOlderThan(models.SUCCESSFUL_JOB, now.Add(-SuccessfulJobMaxAge))
	if err != nil {
		logg.Error(colors.Prefix("job purger", true), err)
		return
	}

	if deleted > 0 {
		logg.Infof(colors.Prefix("job purger", false)+"deleted %v successful job(s)", deleted)
	}
}
