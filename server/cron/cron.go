package cron

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/zivilschutz/zsadmin/server/logger"
)

var logg = logger.NewLogger()

// NewCronScheduler returns a scheduler running in timeZone, falling back to UTC
// when the zone is unknown. Job tags are unique per scheduler.
func NewCronScheduler(timeZone string) *gocron.Scheduler {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		logg.Warnf("unknown time zone %q, using UTC: %v", timeZone, err)
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler
}
