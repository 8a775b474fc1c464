package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/twilio"
	"github.com/zivilschutz/zsadmin/server/work"
)

func seedReminderData(t *testing.T) {
	assert.Nil(t, models.InitializeTestDb())

	persons := []models.Person{
		{FirstName: "Anna", LastName: "Muster", Status: models.ACTIVE_PERSON, MobilePhone: "+41791111111"},
		{FirstName: "Beat", LastName: "Zaugg", Status: models.ACTIVE_PERSON, MobilePhone: "+41792222222"},
		{FirstName: "Carla", LastName: "Arnold", Status: models.INACTIVE_PERSON, MobilePhone: "+41793333333"},
		{FirstName: "Dario", LastName: "Berger", Status: models.ACTIVE_PERSON},
	}
	for i := range persons {
		assert.Nil(t, models.Repository[models.Person]{}.Add(&persons[i]))
	}

	trainings := []models.Training{
		{Title: "WK", Type: models.WK_TRAINING, Year: 2026, StartDate: "2026-03-02", EndDate: "2026-03-04", StartTime: "07:30", Required: true},
		{Title: "Freiwillige Übung", Type: models.EXERCISE_TRAINING, Year: 2026, StartDate: "2026-03-02", EndDate: "2026-03-02"},
		{Title: "Kaderkurs", Type: models.KADER_TRAINING, Year: 2026, StartDate: "2026-03-10", EndDate: "2026-03-10", Required: true},
	}
	for i := range trainings {
		assert.Nil(t, models.Repository[models.Training]{}.Add(&trainings[i]))
	}
}

func TestSendReminders(t *testing.T) {
	seedReminderData(t)

	sender := &twilio.MessageSenderStub{}
	scheduler, err := NewReminderScheduler(work.NewWorkerAdapter("UTC", work.Options{}), sender, "", "Europe/Zurich")
	assert.Nil(t, err)

	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	sent, err := scheduler.SendReminders(now)
	assert.Nil(t, err)
	assert.Equal(t, 2, sent, "Only active persons with a mobile number get a reminder for required trainings")

	messages := sender.Messages()
	assert.Equal(t, "+41791111111", messages[0].To)
	assert.Contains(t, messages[0].Body, "\"WK\"")
	assert.Contains(t, messages[0].Body, "02.03.2026 um 07:30")

	sent, err = scheduler.SendReminders(now.AddDate(0, 0, 2))
	assert.Nil(t, err)
	assert.Equal(t, 0, sent, "No required training starts the next day")
}

func TestSendRemindersReportsFailures(t *testing.T) {
	seedReminderData(t)

	sender := &twilio.MessageSenderStub{Err: errors.New("twilio down")}
	scheduler, err := NewReminderScheduler(work.NewWorkerAdapter("UTC", work.Options{}), sender, "0 18 * * *", "Europe/Zurich")
	assert.Nil(t, err)

	sent, err := scheduler.SendReminders(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, sent)
	assert.Contains(t, err.Error(), "2 reminder(s) failed")
}

func TestNewReminderSchedulerRejectsUnknownTimeZone(t *testing.T) {
	_, err := NewReminderScheduler(work.NewWorkerAdapter("UTC", work.Options{}), &twilio.MessageSenderStub{}, "", "Mars/Olympus")
	assert.NotNil(t, err)
}
