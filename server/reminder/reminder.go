package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server/logger"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/twilio"
	"github.com/zivilschutz/zsadmin/server/work"
	"github.com/zivilschutz/zsadmin/utils"
)

const (
	SEND_TRAINING_REMINDERS = "sendTrainingReminders"
	REMINDER_JOB_NAME       = "training_reminders"
	DEFAULT_CRON_EXPRESSION = "0 18 * * *"
)

var logg = logger.NewLogger()

// ReminderScheduler texts active persons the evening before a required training starts.
type ReminderScheduler struct {
	sender   twilio.MessageSender
	location *time.Location
}

// NewReminderScheduler registers the reminder job handler and schedules it with cronExpression
// (DEFAULT_CRON_EXPRESSION when empty).
func NewReminderScheduler(
	workerPool *work.WorkerPoolAdapter,
	sender twilio.MessageSender,
	cronExpression string,
	timeZone string) (*ReminderScheduler, error) {

	location, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("reminder scheduler: %v", err)
	}

	scheduler := &ReminderScheduler{sender: sender, location: location}

	err = workerPool.Register(SEND_TRAINING_REMINDERS, scheduler.sendRemindersHandler)
	if err != nil {
		return nil, err
	}

	if cronExpression == "" {
		cronExpression = DEFAULT_CRON_EXPRESSION
	}

	err = workerPool.PeriodicallyPerform(cronExpression, work.JobParams{
		Name:    REMINDER_JOB_NAME,
		Handler: SEND_TRAINING_REMINDERS,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}

	return scheduler, nil
}

func (rs *ReminderScheduler) sendRemindersHandler(params map[string]interface{}) error {
	_, err := rs.SendReminders(time.Now())
	return err
}

// SendReminders messages every active person with a mobile number about each required
// training starting the day after 'now'. It keeps going when single messages fail and
// returns how many were sent.
func (rs *ReminderScheduler) SendReminders(now time.Time) (int, error) {
	tomorrow := now.In(rs.location).AddDate(0, 0, 1).Format(utils.DateLayout)

	trainings, err := models.RequiredTrainingsStartingOn(tomorrow)
	if err != nil {
		return 0, errors.Wrap(err, "fetch trainings")
	}

	if len(trainings) == 0 {
		return 0, nil
	}

	persons, err := models.ActivePersonsWithMobile()
	if err != nil {
		return 0, errors.Wrap(err, "fetch persons")
	}

	sent := 0
	failures := []string{}
	for _, training := range trainings {
		msg := reminderMessage(training)
		for _, person := range persons {
			err = rs.sender.SendMessage(person.MobilePhone, msg)
			if err != nil {
				failures = append(failures, fmt.Sprintf("person %v: %v", person.ID, err))
				continue
			}
			sent++
		}
	}

	logg.Infof(colors.Blue("%v training reminder(s) sent for %v"), sent, tomorrow)

	if len(failures) > 0 {
		return sent, fmt.Errorf("%v reminder(s) failed: %v", len(failures), strings.Join(failures, "; "))
	}

	return sent, nil
}

func reminderMessage(training models.Training) string {
	when := utils.FormatSwissDate(training.StartDate)
	if training.StartTime != "" {
		when = fmt.Sprintf("%s um %s", when, training.StartTime)
	}

	return fmt.Sprintf("Zivilschutz: Erinnerung an die Ausbildung \"%s\" (%s) am %s. Die Teilnahme ist obligatorisch.",
		training.Title, training.TypeLabel(), when)
}
