package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zivilschutz/zsadmin/server/models"
)

func training(id uint, title, start, end string, required bool) models.Training {
	t := models.Training{Title: title, StartDate: start, EndDate: end, Required: required, Type: models.WK_TRAINING}
	t.ID = id
	return t
}

func person(id uint, first, last string) models.Person {
	p := models.Person{FirstName: first, LastName: last, Status: models.ACTIVE_PERSON}
	p.ID = id
	return p
}

func record(personID, trainingID uint, date, status string) models.Attendance {
	return models.Attendance{PersonID: personID, TrainingID: trainingID, Date: date, Status: status}
}

func TestTrainingDays(t *testing.T) {
	days, err := TrainingDays(training(1, "WK", "2026-02-27", "2026-03-02", true))
	assert.Nil(t, err)
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}, days)

	days, err = TrainingDays(training(1, "Übung", "2026-05-10", "2026-05-10", false))
	assert.Nil(t, err)
	assert.Equal(t, []string{"2026-05-10"}, days)

	_, err = TrainingDays(training(1, "WK", "2026-03-02", "2026-03-01", true))
	assert.Equal(t, ErrEndBeforeStart, err)

	_, err = TrainingDays(training(1, "WK", "02.03.2026", "2026-03-01", true))
	assert.NotNil(t, err)

	days, err = TrainingDays(training(1, "Jahreskurs", "2026-01-01", "2026-12-31", false))
	assert.Nil(t, err)
	assert.Len(t, days, 365)

	_, err = TrainingDays(training(1, "Endlos", "2026-01-01", "9999-12-31", false))
	assert.Equal(t, ErrTrainingTooLong, err)
}

func TestContainsDate(t *testing.T) {
	wk := training(1, "WK", "2026-03-02", "2026-03-04", true)

	assert.True(t, ContainsDate(wk, "2026-03-02"))
	assert.True(t, ContainsDate(wk, "2026-03-04"))
	assert.False(t, ContainsDate(wk, "2026-03-05"))
	assert.False(t, ContainsDate(wk, "2026-03-01"))
	assert.False(t, ContainsDate(wk, "kein datum"))
}

func TestBuildMatrix(t *testing.T) {
	persons := []models.Person{person(1, "Beat", "Zaugg"), person(2, "Anna", "Muster"), person(3, "Adrian", "Muster")}
	trainings := []models.Training{
		training(10, "WK", "2026-03-02", "2026-03-03", true),
		training(11, "Atemschutz", "2026-03-02", "2026-03-02", false),
	}
	records := []models.Attendance{
		record(2, 10, "2026-03-02", models.ATTENDED),
		record(2, 10, "2026-03-03", models.NOT_ATTENDED),
		record(1, 11, "2026-03-02", models.EXCUSED),
		record(99, 10, "2026-03-02", models.ATTENDED),
	}

	matrix := BuildMatrix(persons, trainings, records)

	assert.Len(t, matrix.Columns, 3)
	assert.Equal(t, "Atemschutz", matrix.Columns[0].Training.Title, "Same day columns are ordered by title")
	assert.Equal(t, "WK", matrix.Columns[1].Training.Title)
	assert.Equal(t, "2026-03-03", matrix.Columns[2].Date)

	assert.Len(t, matrix.Rows, 3)
	assert.Equal(t, "Adrian", matrix.Rows[0].Person.FirstName)
	assert.Equal(t, "Anna", matrix.Rows[1].Person.FirstName)
	assert.Equal(t, "Zaugg", matrix.Rows[2].Person.LastName)

	anna := matrix.Rows[1]
	assert.Equal(t, []string{"", models.ATTENDED, models.NOT_ATTENDED}, anna.Cells)
	assert.Equal(t, Totals{Attended: 1, NotAttended: 1, Open: 1, RequiredMissed: 1}, anna.Totals)

	beat := matrix.Rows[2]
	assert.Equal(t, Totals{Excused: 1, Open: 2}, beat.Totals)
}

func TestBuildMatrixSkipsInvalidTrainings(t *testing.T) {
	matrix := BuildMatrix(
		[]models.Person{person(1, "Anna", "Muster")},
		[]models.Training{training(1, "Kaputt", "2026-03-02", "2026-03-01", false)},
		nil,
	)

	assert.Empty(t, matrix.Columns)
	assert.Len(t, matrix.Rows, 1)
	assert.Empty(t, matrix.Rows[0].Cells)
}

func TestSummarize(t *testing.T) {
	trainings := []models.Training{
		training(11, "Übung", "2026-06-01", "2026-06-01", false),
		training(10, "WK", "2026-03-02", "2026-03-03", true),
	}
	records := []models.Attendance{
		record(1, 10, "2026-03-02", models.ATTENDED),
		record(1, 10, "2026-03-03", models.ATTENDED),
		record(1, 11, "2026-06-01", models.EXCUSED),
		record(2, 11, "2026-06-01", models.NOT_ATTENDED),
	}

	summary := Summarize(1, trainings, records)

	assert.Equal(t, uint(1), summary.PersonID)
	assert.Len(t, summary.Entries, 2)
	assert.Equal(t, "WK", summary.Entries[0].Training.Title, "Entries are ordered by start date")
	assert.Equal(t, []DayStatus{{"2026-03-02", models.ATTENDED}, {"2026-03-03", models.ATTENDED}}, summary.Entries[0].Days)
	assert.Equal(t, Totals{Attended: 2, Excused: 1}, summary.Totals)
	assert.InDelta(t, 66.66, summary.Totals.Rate(), 0.01)

	empty := Summarize(3, trainings, records)
	assert.Equal(t, Totals{Open: 3}, empty.Totals)
	assert.Equal(t, float64(0), empty.Totals.Rate())
}
