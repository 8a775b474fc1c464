package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCronScheduler(t *testing.T) {
	scheduler := NewCronScheduler("Europe/Zurich")
	assert.Equal(t, "Europe/Zurich", scheduler.Location().String())

	scheduler = NewCronScheduler("Mars/Olympus")
	assert.Equal(t, time.UTC, scheduler.Location())

	_, err := scheduler.Cron("0 18 * * *").Tag("reminder").Do(func() {})
	assert.Nil(t, err)

	_, err = scheduler.Cron("0 19 * * *").Tag("reminder").Do(func() {})
	assert.NotNil(t, err, "Tags should be unique")
}
