package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zivilschutz/zsadmin/googleservice"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/gstorage"
	"github.com/zivilschutz/zsadmin/server/mailer"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/services"
	"github.com/zivilschutz/zsadmin/server/twilio"
	"github.com/zivilschutz/zsadmin/server/work"
)

const (
	REAP_SESSIONS    = "reapSessions"
	BACKUP_SQLITE_DB = "backupSqliteDb"

	REAP_SESSIONS_SCHEDULE = "*/15 * * * *"
	SEND_TIMEOUT           = 30 * time.Second
)

// jobHandlers holds the clients background jobs talk to. Optional integrations are nil
// when not configured.
type jobHandlers struct {
	mailer      mailer.Mailer
	sms         twilio.MessageSender
	adminNumber string
	calendar    googleservice.CalendarAPI
	storage     *gstorage.GStorage
	dbFilePath  string
	idleTimeout time.Duration
}

func (h *jobHandlers) sendEmail(params map[string]interface{}) error {
	to, _ := params["to"].(string)
	subject, _ := params["subject"].(string)
	text, _ := params["text"].(string)
	if to == "" {
		return fmt.Errorf("sendEmail: no recipient")
	}

	ctx, cancel := context.WithTimeout(context.Background(), SEND_TIMEOUT)
	defer cancel()

	return h.mailer.Send(ctx, mailer.Message{To: []string{to}, Subject: subject, Text: text})
}

// notifyAdmins mails every admin and texts the configured admin number.
func (h *jobHandlers) notifyAdmins(params map[string]interface{}) error {
	subject, _ := params["subject"].(string)
	text, _ := params["text"].(string)

	admins, err := models.UsersWithRole(auth.ADMIN_ROLE)
	if err != nil {
		return err
	}

	recipients := []string{}
	for _, admin := range admins {
		recipients = append(recipients, admin.Email)
	}

	if len(recipients) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), SEND_TIMEOUT)
		defer cancel()

		err = h.mailer.Send(ctx, mailer.Message{To: recipients, Subject: subject, Text: text})
		if err != nil {
			return err
		}
	}

	if h.sms != nil && h.adminNumber != "" {
		return h.sms.SendMessage(h.adminNumber, strings.TrimSpace(subject+"\n"+text))
	}

	return nil
}

// syncTrainingCalendar mirrors a training into the calendar, or removes a deleted
// training's event.
func (h *jobHandlers) syncTrainingCalendar(params map[string]interface{}) error {
	if h.calendar == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), SEND_TIMEOUT)
	defer cancel()

	if deleted, _ := params["deleted"].(bool); deleted {
		eventID, _ := params["event_id"].(string)
		return h.calendar.DeleteEvent(ctx, eventID)
	}

	// Job args come back from JSON, so numbers are float64.
	id, ok := params["training_id"].(float64)
	if !ok {
		return fmt.Errorf("syncTrainingCalendar: missing training_id")
	}

	training, err := svc.Trainings.Get(uint(id))
	if err != nil {
		logg.Warnf("syncTrainingCalendar: training %v is gone, nothing to sync", id)
		return nil
	}

	eventID, err := h.calendar.UpsertEvent(ctx, googleservice.Event{
		ID:          training.CalendarEventID,
		Summary:     fmt.Sprintf("%s (%s)", training.Title, training.TypeLabel()),
		Description: training.Description,
		StartDate:   training.StartDate,
		EndDate:     training.EndDate,
		StartTime:   training.StartTime,
		EndTime:     training.EndTime,
	})
	if err != nil {
		return err
	}

	if eventID != training.CalendarEventID {
		return svc.Trainings.SetCalendarEventID(training.ID, eventID)
	}
	return nil
}

func (h *jobHandlers) reapSessions(params map[string]interface{}) error {
	deleted, err := svc.Auth.ReapSessions(h.idleTimeout, time.Now())
	if err != nil {
		return err
	}

	if deleted > 0 {
		logg.Infof("Removed %v idle sessions", deleted)
	}
	return nil
}

func (h *jobHandlers) backupSqliteDb(params map[string]interface{}) error {
	if h.storage == nil || h.dbFilePath == "" {
		return nil
	}

	err := h.storage.UploadFile(h.dbFilePath)
	if err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}

	logg.Infof("Uploaded %v to google storage", h.dbFilePath)
	return nil
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter, h *jobHandlers) error {
	handlers := map[string]work.Handler{
		services.SEND_EMAIL:             h.sendEmail,
		services.NOTIFY_ADMINS:          h.notifyAdmins,
		services.SYNC_TRAINING_CALENDAR: h.syncTrainingCalendar,
		REAP_SESSIONS:                   h.reapSessions,
		BACKUP_SQLITE_DB:                h.backupSqliteDb,
	}

	for name, handler := range handlers {
		err := wpa.Register(name, handler)
		if err != nil {
			return err
		}
	}

	return nil
}

func enqueueJobs(wpa *work.WorkerPoolAdapter, h *jobHandlers, backupSchedule string) error {
	err := wpa.PeriodicallyPerform(REAP_SESSIONS_SCHEDULE, work.JobParams{
		Name:    REAP_SESSIONS,
		Handler: REAP_SESSIONS,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
	if err != nil {
		return err
	}

	if h.storage == nil {
		return nil
	}

	return wpa.PeriodicallyPerform(backupSchedule, work.JobParams{
		Name:    BACKUP_SQLITE_DB,
		Handler: BACKUP_SQLITE_DB,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
}
