package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"github.com/zivilschutz/zsadmin/server/attendance"
	"github.com/zivilschutz/zsadmin/server/models"
)

func testPersons() []models.Person {
	anna := models.Person{FirstName: "Anna", LastName: "Müller", Status: models.ACTIVE_PERSON, Platoon: 2, Group: "Betreuung",
		DateOfBirth: "1990-04-12", MobilePhone: "+41791234567", City: "Bern"}
	anna.ID = 1
	beat := models.Person{FirstName: "Beat", LastName: "Zaugg", Status: models.NEW_PERSON}
	beat.ID = 2
	return []models.Person{anna, beat}
}

func testTrainings() []models.Training {
	wk := models.Training{Title: "WK Führung", Type: models.WK_TRAINING, StartDate: "2026-03-02", EndDate: "2026-03-04", Required: true}
	wk.ID = 10
	return []models.Training{wk}
}

func assertPDF(t *testing.T, buf *bytes.Buffer) {
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "Output should be a PDF document")
	assert.Greater(t, buf.Len(), 500)
}

func TestAttendancePDF(t *testing.T) {
	records := []models.Attendance{
		{PersonID: 1, TrainingID: 10, Date: "2026-03-02", Status: models.ATTENDED},
		{PersonID: 2, TrainingID: 10, Date: "2026-03-03", Status: models.EXCUSED},
	}
	matrix := attendance.BuildMatrix(testPersons(), testTrainings(), records)

	buf := new(bytes.Buffer)
	err := AttendancePDF(buf, "Teilnahmen 2026", matrix)
	assert.Nil(t, err)
	assertPDF(t, buf)
}

func TestAttendancePDFSplitsWideMatrices(t *testing.T) {
	long := models.Training{Title: "Einsatz Hochwasser", Type: models.DEPLOYMENT, StartDate: "2026-07-01", EndDate: "2026-08-15"}
	long.ID = 11
	matrix := attendance.BuildMatrix(testPersons(), []models.Training{long}, nil)

	buf := new(bytes.Buffer)
	err := AttendancePDF(buf, "Teilnahmen 2026", matrix)
	assert.Nil(t, err)
	assertPDF(t, buf)
}

func TestAttendancePDFWithoutData(t *testing.T) {
	buf := new(bytes.Buffer)
	err := AttendancePDF(buf, "Teilnahmen 2026", attendance.Matrix{})
	assert.Nil(t, err)
	assertPDF(t, buf)
}

func TestPersonSheetPDF(t *testing.T) {
	person := testPersons()[0]
	contacts := []models.EmergencyContact{{PersonID: 1, Name: "Hans Müller", Relationship: "Vater", PhoneNumber: "+41311234567", Priority: 1}}
	records := []models.Attendance{{PersonID: 1, TrainingID: 10, Date: "2026-03-02", Status: models.ATTENDED}}
	summary := attendance.Summarize(person.ID, testTrainings(), records)

	buf := new(bytes.Buffer)
	err := PersonSheetPDF(buf, person, contacts, summary, 2026)
	assert.Nil(t, err)
	assertPDF(t, buf)

	buf.Reset()
	err = PersonSheetPDF(buf, person, nil, attendance.Summary{}, 2026)
	assert.Nil(t, err)
	assertPDF(t, buf)
}

func TestPersonnelPDF(t *testing.T) {
	buf := new(bytes.Buffer)
	err := PersonnelPDF(buf, "Personalliste", testPersons())
	assert.Nil(t, err)
	assertPDF(t, buf)
}

func TestPersonnelXLSX(t *testing.T) {
	buf := new(bytes.Buffer)
	err := PersonnelXLSX(buf, testPersons())
	assert.Nil(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	assert.Nil(t, err)
	defer f.Close()

	rows, err := f.GetRows(PERSONNEL_SHEET)
	assert.Nil(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, personnelHeader[0], rows[0][0])
	assert.Equal(t, "Müller", rows[1][0])
	assert.Equal(t, "2", rows[1][4])
	assert.Equal(t, "12.04.1990", rows[1][7])
	assert.Equal(t, "Neu", rows[2][6])
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Zug 2 / Betreuung", platoonLabel(testPersons()[0]))
	assert.Equal(t, "", platoonLabel(testPersons()[1]))
	assert.Equal(t, "WK F.", abbreviate("WK Führung", 5))
	assert.Equal(t, "WK", abbreviate("WK", 5))
	assert.Equal(t, "02.03.", shortDate("2026-03-02"))
}
