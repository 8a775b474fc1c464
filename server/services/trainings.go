package services

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/attendance"
	"github.com/zivilschutz/zsadmin/server/cache"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/work"
	"github.com/zivilschutz/zsadmin/utils"
)

type TrainingService struct {
	repo     models.Repository[models.Training]
	cache    *cache.Collection[models.Training]
	validate *validator.Validate
	jobs     JobEnqueuer
}

func newTrainingService(deps Deps) *TrainingService {
	repo := models.Repository[models.Training]{}
	return &TrainingService{
		repo:     repo,
		cache:    cache.NewCollection(repo.All, func(t models.Training) uint { return t.ID }),
		validate: deps.Validate,
		jobs:     deps.Jobs,
	}
}

// List returns the trainings matching query, optionally limited to one year (0 = all),
// ordered by start date.
func (s *TrainingService) List(query string, year int) ([]models.Training, error) {
	trainings, err := s.cache.Find(func(t models.Training) bool {
		return year == 0 || t.Year == year
	})
	if err != nil {
		return nil, err
	}

	trainings = cache.Filter(trainings, query)
	sort.SliceStable(trainings, func(i, j int) bool {
		if trainings[i].StartDate != trainings[j].StartDate {
			return trainings[i].StartDate < trainings[j].StartDate
		}
		return trainings[i].Title < trainings[j].Title
	})

	return trainings, nil
}

func (s *TrainingService) Get(id uint) (*models.Training, error) {
	training, ok, err := s.cache.Get(id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperr.New(apperr.ErrTrainingNotFound)
	}
	return &training, nil
}

// Create stores the training, then notifies the admins and schedules the calendar sync.
// The steps run in sequence; a failed notification is logged and the training is kept.
func (s *TrainingService) Create(training *models.Training, editor string) error {
	training.ID = 0
	training.CalendarEventID = ""
	training.UpdatedBy = editor

	err := s.check(training)
	if err != nil {
		return err
	}

	err = s.repo.Add(training)
	if err != nil {
		return err
	}
	s.cache.Put(*training)

	err = s.jobs.Perform(work.JobParams{
		Name:    fmt.Sprintf("notify_training_%v", training.ID),
		Handler: NOTIFY_ADMINS,
		Args: map[string]interface{}{
			"subject": fmt.Sprintf("Neue Ausbildung: %s", training.Title),
			"text": fmt.Sprintf("%s hat die Ausbildung \"%s\" (%s) vom %s bis %s erfasst.",
				editor, training.Title, training.TypeLabel(),
				utils.FormatSwissDate(training.StartDate), utils.FormatSwissDate(training.EndDate)),
		},
	})
	if err != nil {
		logg.Errorf("could not notify admins about training %v: %v", training.ID, err)
	}

	s.syncCalendar(training.ID)
	return nil
}

func (s *TrainingService) Update(id uint, data map[string]interface{}, editor string) (*models.Training, error) {
	training, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates, err := applyPatch(s.validate, training, data, models.TrainingColumns)
	if err != nil {
		return nil, err
	}

	err = s.check(training)
	if err != nil {
		return nil, err
	}
	updates["year"] = training.Year
	updates["updated_by"] = editor

	updated, err := s.save(id, updates)
	if err != nil {
		return nil, err
	}

	s.syncCalendar(id)
	return updated, nil
}

// SetCalendarEventID records the calendar event created for the training.
func (s *TrainingService) SetCalendarEventID(id uint, eventID string) error {
	_, err := s.save(id, map[string]interface{}{"calendar_event_id": eventID})
	return err
}

// Delete removes the training and its calendar event; attendance records stay.
func (s *TrainingService) Delete(id uint) error {
	training, err := s.Get(id)
	if err != nil {
		return err
	}

	err = s.repo.Delete(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrTrainingNotFound)
	}
	s.cache.Remove(id)

	if training.CalendarEventID != "" {
		err = s.jobs.Perform(work.JobParams{
			Name:    fmt.Sprintf("calendar_delete_%v", training.CalendarEventID),
			Handler: SYNC_TRAINING_CALENDAR,
			Args:    map[string]interface{}{"event_id": training.CalendarEventID, "deleted": true},
		})
		if err != nil {
			logg.Errorf("could not schedule calendar removal for training %v: %v", id, err)
		}
	}

	return nil
}

// check validates the training and sets its year from the start date.
func (s *TrainingService) check(training *models.Training) error {
	if start, err := utils.ParseDate(training.StartDate); err == nil {
		training.Year = start.Year()
	}

	err := validateRecord(s.validate, training)
	if err != nil {
		return err
	}

	_, err = attendance.TrainingDays(*training)
	if err == attendance.ErrEndBeforeStart {
		return apperr.New(apperr.ErrEndBeforeStart)
	}
	if err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}

	return nil
}

func (s *TrainingService) syncCalendar(id uint) {
	err := s.jobs.Perform(work.JobParams{
		Name:    fmt.Sprintf("calendar_sync_training_%v", id),
		Handler: SYNC_TRAINING_CALENDAR,
		Unique:  true,
		Args:    map[string]interface{}{"training_id": id},
	})
	if err != nil {
		logg.Errorf("could not schedule calendar sync for training %v: %v", id, err)
	}
}

func (s *TrainingService) save(id uint, updates map[string]interface{}) (*models.Training, error) {
	err := s.repo.Update(id, updates)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrTrainingNotFound)
	}

	training, err := s.repo.ByID(id)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrTrainingNotFound)
	}

	s.cache.Put(*training)
	return training, nil
}
