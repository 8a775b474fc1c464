package services

import (
	"sort"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/attendance"
	"github.com/zivilschutz/zsadmin/server/cache"
	"github.com/zivilschutz/zsadmin/server/models"
)

// BulkEntry is one person's status within a BulkSetStatus call.
type BulkEntry struct {
	PersonID uint   `json:"person_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=teilgenommen nicht_teilgenommen entschuldigt"`
	Remark   string `json:"remark,omitempty"`
}

type AttendanceService struct {
	repo      models.Repository[models.Attendance]
	cache     *cache.Collection[models.Attendance]
	validate  *validator.Validate
	persons   *PersonService
	trainings *TrainingService
}

func newAttendanceService(deps Deps, persons *PersonService, trainings *TrainingService) *AttendanceService {
	repo := models.Repository[models.Attendance]{}
	return &AttendanceService{
		repo:      repo,
		cache:     cache.NewCollection(repo.All, func(a models.Attendance) uint { return a.ID }),
		validate:  deps.Validate,
		persons:   persons,
		trainings: trainings,
	}
}

// SetStatus records a person's status for one day of a training. An existing record for
// that person, training and day is updated; otherwise exactly one record is created.
func (s *AttendanceService) SetStatus(input models.Attendance, editor string) (*models.Attendance, bool, error) {
	record := models.Attendance{
		PersonID:   input.PersonID,
		TrainingID: input.TrainingID,
		Date:       input.Date,
		Status:     input.Status,
		Remark:     input.Remark,
		Metadata:   models.Metadata{UpdatedBy: editor},
	}

	err := validateRecord(s.validate, record)
	if err != nil {
		return nil, false, err
	}

	err = s.persons.Exists(record.PersonID)
	if err != nil {
		return nil, false, err
	}

	training, err := s.trainings.Get(record.TrainingID)
	if err != nil {
		return nil, false, err
	}

	if !attendance.ContainsDate(*training, record.Date) {
		return nil, false, apperr.New(apperr.ErrDateOutsideTraining)
	}

	created, err := models.SetAttendanceStatus(&record)
	if err != nil {
		return nil, false, err
	}

	s.cache.Put(record)
	return &record, created, nil
}

// BulkSetStatus applies SetStatus for several persons on one training day, in order.
// It stops at the first failure; records set before it are kept.
func (s *AttendanceService) BulkSetStatus(trainingID uint, date string, entries []BulkEntry, editor string) ([]models.Attendance, error) {
	records := []models.Attendance{}
	for _, entry := range entries {
		err := validateRecord(s.validate, entry)
		if err != nil {
			return records, err
		}

		record, _, err := s.SetStatus(models.Attendance{
			PersonID:   entry.PersonID,
			TrainingID: trainingID,
			Date:       date,
			Status:     entry.Status,
			Remark:     entry.Remark,
		}, editor)
		if err != nil {
			return records, err
		}
		records = append(records, *record)
	}

	return records, nil
}

func (s *AttendanceService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrAttendanceNotFound)
	}

	s.cache.Remove(id)
	return nil
}

// ForPerson lists the person's records ordered by date.
func (s *AttendanceService) ForPerson(personID uint) ([]models.Attendance, error) {
	return s.sorted(func(a models.Attendance) bool { return a.PersonID == personID })
}

// ForTraining lists the training's records ordered by date, optionally limited to one day.
func (s *AttendanceService) ForTraining(trainingID uint, date string) ([]models.Attendance, error) {
	return s.sorted(func(a models.Attendance) bool {
		return a.TrainingID == trainingID && (date == "" || a.Date == date)
	})
}

// Matrix builds the attendance matrix for the year's trainings. Rows are the non-inactive
// persons (optionally of one platoon) plus anyone who has a record in that year.
func (s *AttendanceService) Matrix(year int, platoon *int) (attendance.Matrix, error) {
	trainings, err := s.trainings.List("", year)
	if err != nil {
		return attendance.Matrix{}, err
	}

	records, err := s.forTrainings(trainings)
	if err != nil {
		return attendance.Matrix{}, err
	}

	withRecords := map[uint]bool{}
	for _, record := range records {
		withRecords[record.PersonID] = true
	}

	persons, err := s.persons.List(PersonFilter{Platoon: platoon})
	if err != nil {
		return attendance.Matrix{}, err
	}

	rows := []models.Person{}
	for _, person := range persons {
		if person.Status != models.INACTIVE_PERSON || withRecords[person.ID] {
			rows = append(rows, person)
		}
	}

	return attendance.BuildMatrix(rows, trainings, records), nil
}

// Summary is the person's participation in the year's trainings.
func (s *AttendanceService) Summary(personID uint, year int) (attendance.Summary, error) {
	err := s.persons.Exists(personID)
	if err != nil {
		return attendance.Summary{}, err
	}

	trainings, err := s.trainings.List("", year)
	if err != nil {
		return attendance.Summary{}, err
	}

	records, err := s.ForPerson(personID)
	if err != nil {
		return attendance.Summary{}, err
	}

	return attendance.Summarize(personID, trainings, records), nil
}

// Invalidate drops the cached records, e.g. after a bulk delete in the database.
func (s *AttendanceService) Invalidate() {
	s.cache.Invalidate()
}

func (s *AttendanceService) forTrainings(trainings []models.Training) ([]models.Attendance, error) {
	ids := map[uint]bool{}
	for _, training := range trainings {
		ids[training.ID] = true
	}

	return s.sorted(func(a models.Attendance) bool { return ids[a.TrainingID] })
}

func (s *AttendanceService) sorted(match func(models.Attendance) bool) ([]models.Attendance, error) {
	records, err := s.cache.Find(match)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}
