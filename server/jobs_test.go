package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zivilschutz/zsadmin/googleservice"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/mailer"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/twilio"
)

func TestNotifyAdmins(t *testing.T) {
	setupTestServer(t)
	createTestUser(t, "admin@example.ch", auth.ADMIN_ROLE)
	createTestUser(t, "leser@example.ch", auth.READ_ROLE)

	mails := &mailer.MailerStub{}
	sms := &twilio.MessageSenderStub{}
	h := &jobHandlers{mailer: mails, sms: sms, adminNumber: "+41791234567"}

	err := h.notifyAdmins(map[string]interface{}{"subject": "Neue Ausbildung: WK", "text": "Details"})
	assert.Nil(t, err)

	sent := mails.Messages()
	assert.Len(t, sent, 1)
	assert.Equal(t, []string{"admin@example.ch"}, sent[0].To)
	assert.Equal(t, "Neue Ausbildung: WK", sent[0].Subject)

	messages := sms.Messages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "+41791234567", messages[0].To)
}

func TestSendEmail(t *testing.T) {
	mails := &mailer.MailerStub{}
	h := &jobHandlers{mailer: mails}

	assert.NotNil(t, h.sendEmail(map[string]interface{}{"subject": "ohne Empfänger"}))

	err := h.sendEmail(map[string]interface{}{"to": "a@example.ch", "subject": "Hallo", "text": "Text"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a@example.ch"}, mails.Messages()[0].To)
}

func TestSyncTrainingCalendar(t *testing.T) {
	setupTestServer(t)
	calendar := googleservice.NewGCalendarAPIStub()
	h := &jobHandlers{calendar: calendar}

	training := &models.Training{Title: "WK", Type: models.WK_TRAINING, StartDate: "2026-04-13", EndDate: "2026-04-15"}
	assert.Nil(t, svc.Trainings.Create(training, "test"))

	// Args arrive decoded from JSON, so ids are float64.
	err := h.syncTrainingCalendar(map[string]interface{}{"training_id": float64(training.ID)})
	assert.Nil(t, err)

	synced, err := svc.Trainings.Get(training.ID)
	assert.Nil(t, err)
	assert.NotEmpty(t, synced.CalendarEventID)

	event, ok := calendar.Event(synced.CalendarEventID)
	assert.True(t, ok)
	assert.Equal(t, "2026-04-15", event.EndDate)

	t.Run("updates keep the event", func(t *testing.T) {
		err := h.syncTrainingCalendar(map[string]interface{}{"training_id": float64(training.ID)})
		assert.Nil(t, err)
		assert.Len(t, calendar.Events, 1)
	})

	t.Run("deleted trainings remove the event", func(t *testing.T) {
		err := h.syncTrainingCalendar(map[string]interface{}{"event_id": synced.CalendarEventID, "deleted": true})
		assert.Nil(t, err)
		assert.Empty(t, calendar.Events)
	})

	t.Run("missing trainings are skipped", func(t *testing.T) {
		err := h.syncTrainingCalendar(map[string]interface{}{"training_id": float64(999)})
		assert.Nil(t, err)
	})

	t.Run("without a calendar nothing happens", func(t *testing.T) {
		err := (&jobHandlers{}).syncTrainingCalendar(map[string]interface{}{"training_id": float64(training.ID)})
		assert.Nil(t, err)
	})
}

func TestReapSessions(t *testing.T) {
	setupTestServer(t)
	createTestUser(t, "admin@example.ch", auth.ADMIN_ROLE)

	_, session, err := svc.Auth.Login("admin@example.ch", "geheim123")
	assert.Nil(t, err)

	h := &jobHandlers{idleTimeout: -time.Minute}
	assert.Nil(t, h.reapSessions(nil))

	_, err = models.FindSession(session.ID)
	assert.NotNil(t, err)
}
