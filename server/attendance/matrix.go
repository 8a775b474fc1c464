package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/utils"
)

// MAX_TRAINING_DAYS bounds the length of a single training.
const MAX_TRAINING_DAYS = 366

var (
	ErrEndBeforeStart  = errors.New("end date is before start date")
	ErrTrainingTooLong = fmt.Errorf("a training lasts at most %d days", MAX_TRAINING_DAYS)
)

// Column is one day of one training.
type Column struct {
	Training models.Training `json:"training"`
	Date     string          `json:"date"`
}

type Totals struct {
	Attended       int `json:"attended"`
	NotAttended    int `json:"not_attended"`
	Excused        int `json:"excused"`
	Open           int `json:"open"`
	RequiredMissed int `json:"required_missed"`
}

type Row struct {
	Person models.Person `json:"person"`

	// Cells holds one attendance status per column, empty when nothing was recorded.
	Cells  []string `json:"cells"`
	Totals Totals   `json:"totals"`
}

type Matrix struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type cellKey struct {
	personID   uint
	trainingID uint
	date       string
}

// TrainingDays lists every calendar day from the training's start to its end date.
func TrainingDays(training models.Training) ([]string, error) {
	start, err := utils.ParseDate(training.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start date: %v", err)
	}

	end, err := utils.ParseDate(training.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end date: %v", err)
	}

	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	if end.Sub(start) >= MAX_TRAINING_DAYS*24*time.Hour {
		return nil, ErrTrainingTooLong
	}

	days := []string{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(utils.DateLayout))
	}
	return days, nil
}

// ContainsDate reports whether date is one of the training's days.
func ContainsDate(training models.Training, date string) bool {
	day, err := utils.ParseDate(date)
	if err != nil {
		return false
	}

	start, errStart := utils.ParseDate(training.StartDate)
	end, errEnd := utils.ParseDate(training.EndDate)
	if errStart != nil || errEnd != nil {
		return false
	}

	return !day.Before(start) && !day.After(end)
}

// BuildMatrix lays the attendance records out as persons x training days.
// Columns are ordered by date, then title; rows by last name, then first name.
// Trainings with invalid dates are skipped.
func BuildMatrix(persons []models.Person, trainings []models.Training, records []models.Attendance) Matrix {
	matrix := Matrix{Columns: Columns(trainings), Rows: []Row{}}
	statuses := indexRecords(records)

	sortedPersons := make([]models.Person, len(persons))
	copy(sortedPersons, persons)
	sort.SliceStable(sortedPersons, func(i, j int) bool {
		a, b := sortedPersons[i], sortedPersons[j]
		if !strings.EqualFold(a.LastName, b.LastName) {
			return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})

	for _, person := range sortedPersons {
		row := Row{Person: person, Cells: make([]string, len(matrix.Columns))}
		for i, column := range matrix.Columns {
			status := statuses[cellKey{person.ID, column.Training.ID, column.Date}]
			row.Cells[i] = status
			row.Totals.add(status, column.Training.Required)
		}
		matrix.Rows = append(matrix.Rows, row)
	}

	return matrix
}

// Columns expands trainings into their days, ordered by date and title.
func Columns(trainings []models.Training) []Column {
	columns := []Column{}
	for _, training := range trainings {
		days, err := TrainingDays(training)
		if err != nil {
			continue
		}

		for _, day := range days {
			columns = append(columns, Column{Training: training, Date: day})
		}
	}

	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i].Date != columns[j].Date {
			return columns[i].Date < columns[j].Date
		}
		return columns[i].Training.Title < columns[j].Training.Title
	})

	return columns
}

func (t *Totals) add(status string, required bool) {
	switch status {
	case models.ATTENDED:
		t.Attended++
	case models.NOT_ATTENDED:
		t.NotAttended++
		if required {
			t.RequiredMissed++
		}
	case models.EXCUSED:
		t.Excused++
	default:
		t.Open++
	}
}

func indexRecords(records []models.Attendance) map[cellKey]string {
	index := make(map[cellKey]string, len(records))
	for _, record := range records {
		index[cellKey{record.PersonID, record.TrainingID, record.Date}] = record.Status
	}
	return index
}
