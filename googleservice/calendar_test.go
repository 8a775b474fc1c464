package googleservice

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestToCalendarEvent(t *testing.T) {
	t.Run("all-day event ends the day after the last day", func(t *testing.T) {
		ev, err := toCalendarEvent(Event{Summary: "WK", StartDate: "2026-03-02", EndDate: "2026-03-04"}, "Europe/Zurich")
		assert.Nil(t, err)
		assert.Equal(t, "2026-03-02", ev.Start.Date)
		assert.Equal(t, "2026-03-05", ev.End.Date)
		assert.Empty(t, ev.Start.DateTime)
	})

	t.Run("timed event", func(t *testing.T) {
		ev, err := toCalendarEvent(Event{Summary: "Übung", StartDate: "2026-05-10", EndDate: "2026-05-10",
			StartTime: "08:00", EndTime: "12:00"}, "Europe/Zurich")
		assert.Nil(t, err)
		assert.Equal(t, "2026-05-10T08:00:00", ev.Start.DateTime)
		assert.Equal(t, "2026-05-10T12:00:00", ev.End.DateTime)
		assert.Equal(t, "Europe/Zurich", ev.End.TimeZone)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := toCalendarEvent(Event{StartDate: "10.05.2026", EndDate: "2026-05-10"}, "UTC")
		assert.NotNil(t, err)
	})
}

func TestIsGone(t *testing.T) {
	assert.True(t, isGone(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, isGone(&googleapi.Error{Code: http.StatusGone}))
	assert.False(t, isGone(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isGone(errors.New("boom")))
}
